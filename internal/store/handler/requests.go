package handler

import (
	"strings"

	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	return nil
}

// CreateStoreRequest is the body of POST /stores.
type CreateStoreRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (r *CreateStoreRequest) Validate() error {
	r.ID = strings.TrimSpace(r.ID)
	return required("id", r.ID)
}

// UpdateStoreRequest is the body of PUT /stores/{storeID}. Empty fields are left unchanged.
type UpdateStoreRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type CreateAisleRequest struct {
	Number      string `json:"number"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`

	location models.AisleLocation
}

func (r *CreateAisleRequest) Validate() error {
	if err := required("number", r.Number); err != nil {
		return err
	}
	loc, err := models.ParseAisleLocation(r.Location)
	if err != nil {
		return err
	}
	r.location = loc
	return nil
}

type CreateShelfRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Level       string `json:"level"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`

	level       models.ShelfLevel
	temperature models.Temperature
}

func (r *CreateShelfRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	level, err := models.ParseShelfLevel(r.Level)
	if err != nil {
		return err
	}
	temp, err := models.ParseTemperature(r.Temperature)
	if err != nil {
		return err
	}
	r.level, r.temperature = level, temp
	return nil
}

type CreateProductRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Temperature string  `json:"temperature"`

	temperature models.Temperature
}

func (r *CreateProductRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	temp, err := models.ParseTemperature(r.Temperature)
	if err != nil {
		return err
	}
	r.temperature = temp
	return nil
}

type CreateInventoryRequest struct {
	ID          string `json:"id"`
	AisleNumber string `json:"aisle_number"`
	ShelfID     string `json:"shelf_id"`
	Capacity    int    `json:"capacity"`
	Count       int    `json:"count"`
	ProductID   string `json:"product_id"`
	Type        string `json:"type"`

	invType models.InventoryType
}

func (r *CreateInventoryRequest) Validate() error {
	for _, f := range [][2]string{{"id", r.ID}, {"aisle_number", r.AisleNumber}, {"shelf_id", r.ShelfID}, {"product_id", r.ProductID}} {
		if err := required(f[0], f[1]); err != nil {
			return err
		}
	}
	if r.Type == "" {
		r.Type = string(models.InventoryTypeStandard)
	}
	t, err := models.ParseInventoryType(r.Type)
	if err != nil {
		return err
	}
	r.invType = t
	return nil
}

// AdjustInventoryRequest is the body of PATCH /inventories/{inventoryID}.
type AdjustInventoryRequest struct {
	Delta int `json:"delta"`
}

type CreateCustomerRequest struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Type           string `json:"type"`
	Email          string `json:"email"`
	AccountAddress string `json:"account_address"`
	AgeGroup       string `json:"age_group"`

	customerType models.CustomerType
	ageGroup     models.AgeGroup
}

func (r *CreateCustomerRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	t, err := models.ParseCustomerType(r.Type)
	if err != nil {
		return err
	}
	r.customerType = t
	if r.AgeGroup != "" {
		if r.ageGroup, err = models.ParseAgeGroup(r.AgeGroup); err != nil {
			return err
		}
	}
	return nil
}

// LocateCustomerRequest is the body of PUT /customers/{customerID}/location.
type LocateCustomerRequest struct {
	StoreID     string `json:"store_id"`
	AisleNumber string `json:"aisle_number"`
}

func (r *LocateCustomerRequest) Validate() error {
	if err := required("store_id", r.StoreID); err != nil {
		return err
	}
	return required("aisle_number", r.AisleNumber)
}

type CreateBasketRequest struct {
	ID string `json:"id"`
}

func (r *CreateBasketRequest) Validate() error {
	return required("id", r.ID)
}

type AssignBasketRequest struct {
	CustomerID string `json:"customer_id"`
}

func (r *AssignBasketRequest) Validate() error {
	return required("customer_id", r.CustomerID)
}

// BasketItemRequest adds or removes units of a product.
type BasketItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r *BasketItemRequest) Validate() error {
	if err := required("product_id", r.ProductID); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be positive")
	}
	return nil
}

type CreateDeviceRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	AisleNumber string `json:"aisle_number"`
}

func (r *CreateDeviceRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	if err := required("type", r.Type); err != nil {
		return err
	}
	return required("aisle_number", r.AisleNumber)
}

// DeviceMessageRequest carries an event or command name.
type DeviceMessageRequest struct {
	Name string `json:"name"`
}

func (r *DeviceMessageRequest) Validate() error {
	return required("name", r.Name)
}

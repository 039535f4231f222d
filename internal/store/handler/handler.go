package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/platform/httputil"
	"smartstore/pkg/requestcontext"
)

// Service is the store engine as seen by the transport.
type Service interface {
	ProvisionStore(ctx context.Context, id, name, address, description string) (*models.Store, error)
	ShowStore(ctx context.Context, id string) (*models.Store, error)
	ListStores(ctx context.Context) []models.StoreSummary
	UpdateStore(ctx context.Context, id, name, address, description string) (*models.Store, error)
	DeleteStore(ctx context.Context, id string) error

	ProvisionAisle(ctx context.Context, storeID, number, name, description string, location models.AisleLocation) (*models.Aisle, error)
	ShowAisle(ctx context.Context, storeID, number string) (*models.Aisle, error)
	ProvisionShelf(ctx context.Context, storeID, aisleNumber, shelfID, name string, level models.ShelfLevel, description string, temperature models.Temperature) (*models.Shelf, error)
	ShowShelf(ctx context.Context, storeID, aisleNumber, shelfID string) (*models.Shelf, error)

	ProvisionProduct(ctx context.Context, id, name, description, size, category string, price float64, temperature models.Temperature) (*models.Product, error)
	ShowProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) []models.Product

	ProvisionInventory(ctx context.Context, id, storeID, aisleNumber, shelfID string, capacity, count int, productID string, invType models.InventoryType) (*models.Inventory, error)
	UpdateInventory(ctx context.Context, id string, delta int) (*models.Inventory, error)
	ShowInventory(ctx context.Context, id string) (*models.Inventory, error)

	ProvisionCustomer(ctx context.Context, id, firstName, lastName string, customerType models.CustomerType, email, accountAddress string, ageGroup models.AgeGroup) (*models.Customer, error)
	ShowCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id, storeID, aisleNumber string) (*models.Customer, error)

	ProvisionBasket(ctx context.Context, id string) (*models.Basket, error)
	ShowBasket(ctx context.Context, id string) (*models.Basket, error)
	AssignCustomerBasket(ctx context.Context, customerID, basketID string) (*models.Basket, error)
	AddBasketProduct(ctx context.Context, basketID, productID string, quantity int) (*models.Basket, error)
	RemoveBasketProduct(ctx context.Context, basketID, productID string, quantity int) (*models.Basket, error)
	ClearBasket(ctx context.Context, basketID string) (*models.Basket, error)
	DeleteBasket(ctx context.Context, basketID string) error

	ProvisionDevice(ctx context.Context, id, name, typeTag, storeID, aisleNumber string) (*models.Device, error)
	ShowDevice(ctx context.Context, id string) (*models.Device, error)
	ListDevices(ctx context.Context, storeID string) ([]models.Device, error)
	RaiseEvent(ctx context.Context, deviceID, event string) error
	IssueCommand(ctx context.Context, deviceID, command string) error
}

// Handler wires store endpoints to the store engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts store endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/stores", func(r chi.Router) {
		r.Get("/", h.HandleListStores)
		r.Post("/", h.HandleCreateStore)
		r.Route("/{storeID}", func(r chi.Router) {
			r.Get("/", h.HandleGetStore)
			r.Put("/", h.HandleUpdateStore)
			r.Delete("/", h.HandleDeleteStore)
			r.Post("/aisles", h.HandleCreateAisle)
			r.Get("/aisles/{aisle}", h.HandleGetAisle)
			r.Post("/aisles/{aisle}/shelves", h.HandleCreateShelf)
			r.Get("/aisles/{aisle}/shelves/{shelfID}", h.HandleGetShelf)
			r.Post("/inventories", h.HandleCreateInventory)
			r.Get("/devices", h.HandleListDevices)
			r.Post("/devices", h.HandleCreateDevice)
		})
	})

	r.Get("/products", h.HandleListProducts)
	r.Post("/products", h.HandleCreateProduct)
	r.Get("/products/{productID}", h.HandleGetProduct)

	r.Get("/inventories/{inventoryID}", h.HandleGetInventory)
	r.Patch("/inventories/{inventoryID}", h.HandleAdjustInventory)

	r.Post("/customers", h.HandleCreateCustomer)
	r.Get("/customers/{customerID}", h.HandleGetCustomer)
	r.Put("/customers/{customerID}/location", h.HandleLocateCustomer)

	r.Post("/baskets", h.HandleCreateBasket)
	r.Route("/baskets/{basketID}", func(r chi.Router) {
		r.Get("/", h.HandleGetBasket)
		r.Delete("/", h.HandleDeleteBasket)
		r.Put("/customer", h.HandleAssignBasket)
		r.Post("/items", h.HandleAddBasketItem)
		r.Delete("/items/{productID}", h.HandleRemoveBasketItem)
		r.Post("/clear", h.HandleClearBasket)
	})

	r.Get("/devices/{deviceID}", h.HandleGetDevice)
	r.Post("/devices/{deviceID}/events", h.HandleRaiseEvent)
	r.Post("/devices/{deviceID}/commands", h.HandleIssueCommand)
}

// respond writes v or the error, logging failures the way every route does.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		ctx := r.Context()
		level := slog.LevelInfo
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "store request failed",
			"request_id", requestcontext.RequestID(ctx),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	httputil.WriteJSON(w, status, v)
}

func (h *Handler) HandleListStores(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.ListStores(r.Context()), nil)
}

func (h *Handler) HandleCreateStore(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateStoreRequest](w, r, h.logger)
	if !ok {
		return
	}
	st, err := h.service.ProvisionStore(r.Context(), req.ID, req.Name, req.Address, req.Description)
	h.respond(w, r, http.StatusCreated, st, err)
}

func (h *Handler) HandleGetStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.ShowStore(r.Context(), chi.URLParam(r, "storeID"))
	h.respond(w, r, http.StatusOK, st, err)
}

func (h *Handler) HandleUpdateStore(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[UpdateStoreRequest](w, r, h.logger)
	if !ok {
		return
	}
	st, err := h.service.UpdateStore(r.Context(), chi.URLParam(r, "storeID"), req.Name, req.Address, req.Description)
	h.respond(w, r, http.StatusOK, st, err)
}

func (h *Handler) HandleDeleteStore(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteStore(r.Context(), chi.URLParam(r, "storeID"))
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) HandleCreateAisle(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateAisleRequest](w, r, h.logger)
	if !ok {
		return
	}
	a, err := h.service.ProvisionAisle(r.Context(), chi.URLParam(r, "storeID"), req.Number, req.Name, req.Description, req.location)
	h.respond(w, r, http.StatusCreated, a, err)
}

func (h *Handler) HandleGetAisle(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.ShowAisle(r.Context(), chi.URLParam(r, "storeID"), chi.URLParam(r, "aisle"))
	h.respond(w, r, http.StatusOK, a, err)
}

func (h *Handler) HandleCreateShelf(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateShelfRequest](w, r, h.logger)
	if !ok {
		return
	}
	sh, err := h.service.ProvisionShelf(r.Context(), chi.URLParam(r, "storeID"), chi.URLParam(r, "aisle"),
		req.ID, req.Name, req.level, req.Description, req.temperature)
	h.respond(w, r, http.StatusCreated, sh, err)
}

func (h *Handler) HandleGetShelf(w http.ResponseWriter, r *http.Request) {
	sh, err := h.service.ShowShelf(r.Context(), chi.URLParam(r, "storeID"), chi.URLParam(r, "aisle"), chi.URLParam(r, "shelfID"))
	h.respond(w, r, http.StatusOK, sh, err)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.service.ListProducts(r.Context()), nil)
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateProductRequest](w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.service.ProvisionProduct(r.Context(), req.ID, req.Name, req.Description, req.Size, req.Category, req.Price, req.temperature)
	h.respond(w, r, http.StatusCreated, p, err)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.ShowProduct(r.Context(), chi.URLParam(r, "productID"))
	h.respond(w, r, http.StatusOK, p, err)
}

func (h *Handler) HandleCreateInventory(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateInventoryRequest](w, r, h.logger)
	if !ok {
		return
	}
	inv, err := h.service.ProvisionInventory(r.Context(), req.ID, chi.URLParam(r, "storeID"), req.AisleNumber, req.ShelfID,
		req.Capacity, req.Count, req.ProductID, req.invType)
	h.respond(w, r, http.StatusCreated, inv, err)
}

func (h *Handler) HandleGetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.ShowInventory(r.Context(), chi.URLParam(r, "inventoryID"))
	h.respond(w, r, http.StatusOK, inv, err)
}

func (h *Handler) HandleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AdjustInventoryRequest](w, r, h.logger)
	if !ok {
		return
	}
	inv, err := h.service.UpdateInventory(r.Context(), chi.URLParam(r, "inventoryID"), req.Delta)
	h.respond(w, r, http.StatusOK, inv, err)
}

func (h *Handler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateCustomerRequest](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.service.ProvisionCustomer(r.Context(), req.ID, req.FirstName, req.LastName, req.customerType,
		req.Email, req.AccountAddress, req.ageGroup)
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *Handler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ShowCustomer(r.Context(), chi.URLParam(r, "customerID"))
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) HandleLocateCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[LocateCustomerRequest](w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), chi.URLParam(r, "customerID"), req.StoreID, req.AisleNumber)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) HandleCreateBasket(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateBasketRequest](w, r, h.logger)
	if !ok {
		return
	}
	b, err := h.service.ProvisionBasket(r.Context(), req.ID)
	h.respond(w, r, http.StatusCreated, b, err)
}

func (h *Handler) HandleGetBasket(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ShowBasket(r.Context(), chi.URLParam(r, "basketID"))
	h.respond(w, r, http.StatusOK, b, err)
}

func (h *Handler) HandleDeleteBasket(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteBasket(r.Context(), chi.URLParam(r, "basketID"))
	h.respond(w, r, http.StatusNoContent, nil, err)
}

func (h *Handler) HandleAssignBasket(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[AssignBasketRequest](w, r, h.logger)
	if !ok {
		return
	}
	b, err := h.service.AssignCustomerBasket(r.Context(), req.CustomerID, chi.URLParam(r, "basketID"))
	h.respond(w, r, http.StatusOK, b, err)
}

func (h *Handler) HandleAddBasketItem(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[BasketItemRequest](w, r, h.logger)
	if !ok {
		return
	}
	b, err := h.service.AddBasketProduct(r.Context(), chi.URLParam(r, "basketID"), req.ProductID, req.Quantity)
	h.respond(w, r, http.StatusOK, b, err)
}

// HandleRemoveBasketItem handles DELETE /baskets/{basketID}/items/{productID}?quantity=N.
// Quantity defaults to 1.
func (h *Handler) HandleRemoveBasketItem(w http.ResponseWriter, r *http.Request) {
	quantity := 1
	if q := r.URL.Query().Get("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer"))
			return
		}
		quantity = n
	}
	b, err := h.service.RemoveBasketProduct(r.Context(), chi.URLParam(r, "basketID"), chi.URLParam(r, "productID"), quantity)
	h.respond(w, r, http.StatusOK, b, err)
}

func (h *Handler) HandleClearBasket(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.ClearBasket(r.Context(), chi.URLParam(r, "basketID"))
	h.respond(w, r, http.StatusOK, b, err)
}

func (h *Handler) HandleCreateDevice(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[CreateDeviceRequest](w, r, h.logger)
	if !ok {
		return
	}
	d, err := h.service.ProvisionDevice(r.Context(), req.ID, req.Name, req.Type, chi.URLParam(r, "storeID"), req.AisleNumber)
	h.respond(w, r, http.StatusCreated, d, err)
}

func (h *Handler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDevices(r.Context(), chi.URLParam(r, "storeID"))
	h.respond(w, r, http.StatusOK, list, err)
}

func (h *Handler) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.ShowDevice(r.Context(), chi.URLParam(r, "deviceID"))
	h.respond(w, r, http.StatusOK, d, err)
}

func (h *Handler) HandleRaiseEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[DeviceMessageRequest](w, r, h.logger)
	if !ok {
		return
	}
	err := h.service.RaiseEvent(r.Context(), chi.URLParam(r, "deviceID"), req.Name)
	h.respond(w, r, http.StatusAccepted, nil, err)
}

func (h *Handler) HandleIssueCommand(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[DeviceMessageRequest](w, r, h.logger)
	if !ok {
		return
	}
	err := h.service.IssueCommand(r.Context(), chi.URLParam(r, "deviceID"), req.Name)
	h.respond(w, r, http.StatusAccepted, nil, err)
}

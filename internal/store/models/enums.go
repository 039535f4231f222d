package models

import (
	"fmt"

	dErrors "smartstore/pkg/domain-errors"
)

// Temperature is the storage temperature of a shelf or the requirement of a product.
type Temperature string

const (
	TemperatureFrozen       Temperature = "frozen"
	TemperatureRefrigerated Temperature = "refrigerated"
	TemperatureAmbient      Temperature = "ambient"
	TemperatureWarm         Temperature = "warm"
	TemperatureHot          Temperature = "hot"
)

// ShelfLevel is unique among the shelves of one aisle.
type ShelfLevel string

const (
	ShelfLevelHigh   ShelfLevel = "high"
	ShelfLevelMedium ShelfLevel = "medium"
	ShelfLevelLow    ShelfLevel = "low"
)

// AisleLocation tells whether an aisle is on the sales floor or in the store room.
type AisleLocation string

const (
	AisleLocationFloor     AisleLocation = "floor"
	AisleLocationStoreRoom AisleLocation = "store_room"
)

type InventoryType string

const (
	InventoryTypeStandard InventoryType = "standard"
	InventoryTypeFlexible InventoryType = "flexible"
)

// CustomerType decides whether a customer may purchase. Guests may browse only.
type CustomerType string

const (
	CustomerTypeGuest      CustomerType = "guest"
	CustomerTypeRegistered CustomerType = "registered"
)

type AgeGroup string

const (
	AgeGroupChild AgeGroup = "child"
	AgeGroupAdult AgeGroup = "adult"
)

var (
	validTemperatures = map[Temperature]bool{
		TemperatureFrozen: true, TemperatureRefrigerated: true, TemperatureAmbient: true,
		TemperatureWarm: true, TemperatureHot: true,
	}
	validShelfLevels     = map[ShelfLevel]bool{ShelfLevelHigh: true, ShelfLevelMedium: true, ShelfLevelLow: true}
	validAisleLocations  = map[AisleLocation]bool{AisleLocationFloor: true, AisleLocationStoreRoom: true}
	validInventoryTypes  = map[InventoryType]bool{InventoryTypeStandard: true, InventoryTypeFlexible: true}
	validCustomerTypes   = map[CustomerType]bool{CustomerTypeGuest: true, CustomerTypeRegistered: true}
	validCustomerAgeGrps = map[AgeGroup]bool{AgeGroupChild: true, AgeGroupAdult: true}
)

func (t Temperature) IsValid() bool   { return validTemperatures[t] }
func (l ShelfLevel) IsValid() bool    { return validShelfLevels[l] }
func (l AisleLocation) IsValid() bool { return validAisleLocations[l] }
func (t InventoryType) IsValid() bool { return validInventoryTypes[t] }
func (t CustomerType) IsValid() bool  { return validCustomerTypes[t] }
func (g AgeGroup) IsValid() bool      { return validCustomerAgeGrps[g] }

// ParseTemperature constructs a Temperature from external input.
// Returns CodeValidation when the value is not one of the supported temperatures.
func ParseTemperature(s string) (Temperature, error) {
	return parseEnum(Temperature(s), "temperature")
}

func ParseShelfLevel(s string) (ShelfLevel, error) {
	return parseEnum(ShelfLevel(s), "shelf level")
}

func ParseAisleLocation(s string) (AisleLocation, error) {
	return parseEnum(AisleLocation(s), "aisle location")
}

func ParseInventoryType(s string) (InventoryType, error) {
	return parseEnum(InventoryType(s), "inventory type")
}

func ParseCustomerType(s string) (CustomerType, error) {
	return parseEnum(CustomerType(s), "customer type")
}

func ParseAgeGroup(s string) (AgeGroup, error) {
	return parseEnum(AgeGroup(s), "age group")
}

type enumValue interface {
	~string
	IsValid() bool
}

func parseEnum[T enumValue](v T, what string) (T, error) {
	if v == "" {
		return v, dErrors.New(dErrors.CodeValidation, what+" is required")
	}
	if !v.IsValid() {
		return v, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown %s %q", what, string(v)))
	}
	return v, nil
}

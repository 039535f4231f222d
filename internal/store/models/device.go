package models

import (
	"strings"

	dErrors "smartstore/pkg/domain-errors"
)

// DeviceKind is the capability variant of a device.
type DeviceKind string

const (
	// DeviceKindSensor accepts events only.
	DeviceKindSensor DeviceKind = "sensor"
	// DeviceKindAppliance accepts events and commands.
	DeviceKindAppliance DeviceKind = "appliance"
)

// deviceKinds maps a device type tag to its variant.
var deviceKinds = map[string]DeviceKind{
	"microphone": DeviceKindSensor,
	"camera":     DeviceKindSensor,
	"robot":      DeviceKindAppliance,
	"speaker":    DeviceKindAppliance,
	"turnstile":  DeviceKindAppliance,
}

// KindForType resolves the variant of a type tag.
// Returns CodeValidation for unrecognized tags.
func KindForType(typeTag string) (DeviceKind, error) {
	kind, ok := deviceKinds[strings.ToLower(strings.TrimSpace(typeTag))]
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unrecognized device type "+typeTag)
	}
	return kind, nil
}

// Device is a sensor or appliance placed in a store aisle.
type Device struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Kind     DeviceKind    `json:"kind"`
	Location StoreLocation `json:"location"`
}

func NewDevice(id, name, typeTag string, location StoreLocation) (*Device, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "device id is required")
	}
	kind, err := KindForType(typeTag)
	if err != nil {
		return nil, err
	}
	return &Device{
		ID:       id,
		Name:     name,
		Type:     strings.ToLower(strings.TrimSpace(typeTag)),
		Kind:     kind,
		Location: location,
	}, nil
}

// SupportsCommand reports whether the device accepts commands.
func (d *Device) SupportsCommand() bool {
	return d.Kind == DeviceKindAppliance
}

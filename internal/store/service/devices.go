package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"smartstore/internal/events"
	"smartstore/internal/store/models"
	dErrors "smartstore/pkg/domain-errors"
	"smartstore/pkg/requestcontext"
)

// deviceHandler is the behaviour of one device variant.
type deviceHandler interface {
	HandleEvent(ctx context.Context, d models.Device, event string)
	HandleCommand(ctx context.Context, d models.Device, command string) error
}

// sensorHandler accepts events only.
type sensorHandler struct{ s *Service }

func (h sensorHandler) HandleEvent(ctx context.Context, d models.Device, event string) {
	h.s.dispatch(ctx, events.CategoryEvent, d, event)
}

func (h sensorHandler) HandleCommand(_ context.Context, d models.Device, _ string) error {
	return dErrors.New(dErrors.CodeInvalidState, "sensor "+d.ID+" does not accept commands")
}

// applianceHandler accepts events and commands.
type applianceHandler struct{ s *Service }

func (h applianceHandler) HandleEvent(ctx context.Context, d models.Device, event string) {
	h.s.dispatch(ctx, events.CategoryEvent, d, event)
}

func (h applianceHandler) HandleCommand(ctx context.Context, d models.Device, command string) error {
	h.s.dispatch(ctx, events.CategoryCommand, d, command)
	return nil
}

// ProvisionDevice registers a sensor or appliance in a store aisle. The variant
// follows from the type tag. Device ids are unique across the directory.
func (s *Service) ProvisionDevice(ctx context.Context, id, name, typeTag, storeID, aisleNumber string) (_ *models.Device, err error) {
	ctx, done := s.track(ctx, "provision device",
		attribute.String("device_id", id), attribute.String("store_id", storeID))
	defer func() { err = done(err) }()

	d, err := models.NewDevice(id, name, typeTag, models.StoreLocation{StoreID: storeID, AisleNumber: aisleNumber})
	if err != nil {
		return nil, err
	}

	var release func()
	err = s.mutateStore(ctx, storeID, func(st *models.Store) error {
		if err := st.AddDevice(d); err != nil {
			return err
		}
		var err error
		release, err = s.reserve(s.deviceAt, "device", d.ID, storeID)
		return err
	})
	if err != nil {
		if release != nil {
			release()
		}
		return nil, err
	}
	s.logAudit(ctx, "device_provisioned",
		"device_id", d.ID,
		"device_type", d.Type,
		"device_kind", string(d.Kind),
		"store_id", storeID,
	)
	out := *d
	return &out, nil
}

func (s *Service) ShowDevice(ctx context.Context, id string) (_ *models.Device, err error) {
	_, done := s.track(ctx, "show device")
	defer func() { err = done(err) }()

	d, err := s.device(id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDevices returns the devices of a store ordered by id.
func (s *Service) ListDevices(ctx context.Context, storeID string) (_ []models.Device, err error) {
	_, done := s.track(ctx, "list devices")
	defer func() { err = done(err) }()

	var out []models.Device
	err = s.readStore(storeID, func(st *models.Store) error {
		ids := st.DeviceIDs()
		out = make([]models.Device, 0, len(ids))
		for _, id := range ids {
			out = append(out, *st.Devices[id])
		}
		return nil
	})
	return out, err
}

// RaiseEvent hands an event to the device's variant. Every variant accepts
// events; unknown event names are passed through.
func (s *Service) RaiseEvent(ctx context.Context, deviceID, event string) (err error) {
	ctx, done := s.track(ctx, "raise event", attribute.String("device_id", deviceID))
	defer func() { err = done(err) }()

	d, err := s.device(deviceID)
	if err != nil {
		return err
	}
	h, err := s.handlerFor(d)
	if err != nil {
		return err
	}
	h.HandleEvent(ctx, d, event)
	return nil
}

// IssueCommand sends a command to an appliance. Sensors reject commands.
func (s *Service) IssueCommand(ctx context.Context, deviceID, command string) (err error) {
	ctx, done := s.track(ctx, "issue command", attribute.String("device_id", deviceID))
	defer func() { err = done(err) }()

	d, err := s.device(deviceID)
	if err != nil {
		return err
	}
	h, err := s.handlerFor(d)
	if err != nil {
		return err
	}
	return h.HandleCommand(ctx, d, command)
}

func (s *Service) device(id string) (models.Device, error) {
	storeID, err := s.lookup(s.deviceAt, "device", id)
	if err != nil {
		return models.Device{}, err
	}
	var out models.Device
	err = s.readStore(storeID, func(st *models.Store) error {
		d, err := st.Device(id)
		if err != nil {
			return err
		}
		out = *d
		return nil
	})
	return out, err
}

func (s *Service) handlerFor(d models.Device) (deviceHandler, error) {
	h, ok := s.devices[d.Kind]
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidState, "device "+d.ID+" has unknown kind "+string(d.Kind))
	}
	return h, nil
}

// dispatch logs the interaction and offers it to the event queue without blocking.
func (s *Service) dispatch(ctx context.Context, category events.Category, d models.Device, name string) {
	s.logger.DebugContext(ctx, "device "+string(category),
		"device_id", d.ID,
		"device_kind", string(d.Kind),
		"store_id", d.Location.StoreID,
		"aisle", d.Location.AisleNumber,
		"name", name,
		"log_type", "device",
	)
	if s.metrics != nil {
		s.metrics.IncrementDeviceRecord(string(category), string(d.Kind))
	}
	if s.queue == nil {
		return
	}
	accepted := s.queue.Enqueue(events.Record{
		Category:    category,
		DeviceID:    d.ID,
		DeviceType:  d.Type,
		DeviceKind:  string(d.Kind),
		StoreID:     d.Location.StoreID,
		AisleNumber: d.Location.AisleNumber,
		Name:        name,
		RequestID:   requestcontext.RequestID(ctx),
		OccurredAt:  requestcontext.Now(ctx),
	})
	if !accepted {
		if s.metrics != nil {
			s.metrics.IncrementDeviceDropped()
		}
		s.logger.WarnContext(ctx, "device record dropped, event queue full", "device_id", d.ID)
	}
}

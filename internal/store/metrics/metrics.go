package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the store engine.
// Tracks operation outcomes and durations, basket stock movement and device traffic.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	BasketUnits       *prometheus.CounterVec
	DeviceRecords     *prometheus.CounterVec
	DeviceDropped     prometheus.Counter
	Stores            prometheus.Gauge
}

// New registers the engine metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_operations_total",
			Help: "Engine operations by action and outcome code",
		}, []string{"action", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartstore_operation_duration_seconds",
			Help:    "Duration of engine operations including persistence",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"action"}),
		BasketUnits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_basket_units_total",
			Help: "Units moved between inventories and baskets",
		}, []string{"direction"}),
		DeviceRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_device_records_total",
			Help: "Device events and commands dispatched",
		}, []string{"category", "kind"}),
		DeviceDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "smartstore_device_records_dropped_total",
			Help: "Device records dropped because the event queue was full",
		}),
		Stores: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartstore_stores",
			Help: "Number of stores in the directory",
		}),
	}
}

// ObserveOperation records the outcome and duration of one operation.
// Call with time.Now() at the start of the operation; code is "ok" on success.
func (m *Metrics) ObserveOperation(action, code string, start time.Time) {
	m.Operations.WithLabelValues(action, code).Inc()
	m.OperationDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// AddBasketUnits records units taken from ("out") or returned to ("in") inventory.
func (m *Metrics) AddBasketUnits(direction string, units int) {
	m.BasketUnits.WithLabelValues(direction).Add(float64(units))
}

func (m *Metrics) IncrementDeviceRecord(category, kind string) {
	m.DeviceRecords.WithLabelValues(category, kind).Inc()
}

func (m *Metrics) IncrementDeviceDropped() {
	m.DeviceDropped.Inc()
}

func (m *Metrics) SetStores(n int) {
	m.Stores.Set(float64(n))
}

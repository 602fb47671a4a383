// Package metrics exposes the pad server's live state as Prometheus gauges.
// This is ambient observability, not a spec feature, grounded on
// 99souls-ariadne's engine/monitoring use of prometheus/client_golang; it is
// wired only on an operator-supplied -m flag and never changes pad
// semantics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carletonu/hysim-go/packet"
)

// Registry holds the gauges the pad server updates on every padstate write.
type Registry struct {
	reg *prometheus.Registry

	ArmLevel      prometheus.Gauge
	ConnStatus    prometheus.Gauge
	ActuatorState *prometheus.GaugeVec
	Reconnects    prometheus.Counter
}

// NewRegistry builds a fresh Prometheus registry with the pad server's
// gauges registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		ArmLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hysim", Subsystem: "pad", Name: "arm_level",
			Help: "Current arming level (0=ARMED_PAD .. 4=ARMED_LAUNCH).",
		}),
		ConnStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hysim", Subsystem: "pad", Name: "conn_status",
			Help: "Control channel connection status (0=CONNECTED,1=RECONNECTING,2=DISCONNECTED).",
		}),
		ActuatorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hysim", Subsystem: "pad", Name: "actuator_state",
			Help: "Recorded on/off state (1/0) per actuator.",
		}, []string{"actuator"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hysim", Subsystem: "pad", Name: "controller_reconnects_total",
			Help: "Count of times the control connection was lost and the controller task entered RECONNECTING.",
		}),
	}
	reg.MustRegister(r.ArmLevel, r.ConnStatus, r.ActuatorState, r.Reconnects)
	return r
}

// ObserveArm records the current arming level.
func (r *Registry) ObserveArm(level packet.ArmLevel) {
	r.ArmLevel.Set(float64(level))
}

// ObserveConn records the current connection status.
func (r *Registry) ObserveConn(status packet.ConnStatus) {
	r.ConnStatus.Set(float64(status))
	if status == packet.ConnReconnecting {
		r.Reconnects.Inc()
	}
}

// ObserveActuator records one actuator's recorded state.
func (r *Registry) ObserveActuator(id packet.ActuatorID, on bool) {
	v := 0.0
	if on {
		v = 1.0
	}
	r.ActuatorState.WithLabelValues(id.Name()).Set(v)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve starts a blocking HTTP server exposing /metrics on addr.
func Serve(addr string, r *Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return http.ListenAndServe(addr, mux)
}

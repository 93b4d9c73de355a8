package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Checkouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soko",
		Subsystem: "orders",
		Name:      "checkouts_total",
		Help:      "Total checkout attempts by outcome.",
	}, []string{"outcome"})

	Transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soko",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Total order status transitions.",
	}, []string{"from", "to"})

	CartMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soko",
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Total cart line-item mutations.",
	}, []string{"op"})
)

// Register installs the collectors on the default registry. Called once from
// main; the counters still work unregistered, which keeps tests independent.
func Register() {
	prometheus.MustRegister(Checkouts, Transitions, CartMutations)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

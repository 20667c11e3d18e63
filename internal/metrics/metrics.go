// Package metrics регистрирует метрики Prometheus жизненного цикла подписки.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics хранит счётчики приложения.
type Metrics struct {
	SubscriptionsCreated   prometheus.Counter
	SubscriptionsConfirmed prometheus.Counter
	SubscriptionsRejected  *prometheus.CounterVec
	DispatchFailures       prometheus.Counter
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubscriptionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_created_total",
			Help: "Total number of pending subscriptions persisted",
		}),
		SubscriptionsConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_confirmed_total",
			Help: "Total number of successful confirmations, repeats included",
		}),
		SubscriptionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_subscriptions_rejected_total",
			Help: "Subscription and confirmation requests rejected, by reason",
		}, []string{"reason"}),
		DispatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "newsletter_confirmation_dispatch_failures_total",
			Help: "Total number of confirmation emails the provider did not accept",
		}),
	}
}

// IncRejected увеличивает счётчик отказов с указанной причиной.
func (m *Metrics) IncRejected(reason string) {
	m.SubscriptionsRejected.WithLabelValues(reason).Inc()
}

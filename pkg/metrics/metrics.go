// Package metrics exports seeding weights and strength levels as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"seedwatch/pkg/strength"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the seedwatch metric set and the registry it is registered on.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	ownWeight     *prometheus.GaugeVec
	networkWeight *prometheus.GaugeVec
	strengthRatio *prometheus.GaugeVec
	levelIndex    *prometheus.GaugeVec
	gaugeValue    *prometheus.GaugeVec
	fetchErrors   *prometheus.CounterVec
	lastRefresh   prometheus.Gauge
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		m.namespace = ns
	}
}

// WithRegistry registers the metrics on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		m.registry = r
	}
}

// NewManager creates and registers the metric set.
func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "seedwatch"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(m.registry)
	walletLabels := []string{"wallet"}

	m.ownWeight = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "own_weight",
		Help:      "Staking weight of the wallet, in whole coins.",
	}, walletLabels)
	m.networkWeight = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "network_weight",
		Help:      "Total staking weight of the network, in whole coins.",
	}, walletLabels)
	m.strengthRatio = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "strength_ratio",
		Help:      "Share of the total weight held by the wallet (0-1).",
	}, walletLabels)
	m.levelIndex = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "level_index",
		Help:      "Index of the wallet's seeding level.",
	}, walletLabels)
	m.gaugeValue = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "level_gauge",
		Help:      "Gauge fill percentage of the wallet's seeding level.",
	}, walletLabels)
	m.fetchErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "fetch_errors_total",
		Help:      "Failed node fetches by kind.",
	}, []string{"kind"})
	m.lastRefresh = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last completed refresh.",
	})

	return m
}

// ObserveStrength records the weights and the evaluated level of a wallet.
func (m *Manager) ObserveStrength(wallet string, own, network float64, res strength.Result) {
	if m == nil {
		return
	}
	m.ownWeight.WithLabelValues(wallet).Set(own)
	m.networkWeight.WithLabelValues(wallet).Set(network)
	m.strengthRatio.WithLabelValues(wallet).Set(res.Strength)
	m.levelIndex.WithLabelValues(wallet).Set(float64(res.LevelIndex))
	m.gaugeValue.WithLabelValues(wallet).Set(float64(res.GaugeValue))
}

// RecordFetchError counts a failed fetch.
func (m *Manager) RecordFetchError(kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordRefresh stores the completion time of a refresh round.
func (m *Manager) RecordRefresh(t time.Time) {
	if m == nil {
		return
	}
	m.lastRefresh.Set(float64(t.Unix()))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)

	AuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAuthFailures,
			Help: HelpTextAuthFailures,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	RollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRollsTotal,
			Help: HelpTextRollsTotal,
		},
		[]string{LabelBanner, LabelRarity},
	)

	HardPityHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHardPityHits,
			Help: HelpTextHardPityHits,
		},
		[]string{LabelTier},
	)

	FeaturedWins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameFeaturedWins,
			Help: HelpTextFeaturedWins,
		},
		[]string{LabelBanner},
	)

	GuaranteesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGuaranteesConsumed,
			Help: HelpTextGuaranteesConsumed,
		},
		[]string{LabelBanner},
	)

	FatePointsCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFatePointsCredited,
			Help: HelpTextFatePointsCredited,
		},
	)

	ExchangesRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameExchangesRedeemed,
			Help: HelpTextExchangesRedeemed,
		},
		[]string{LabelOption},
	)

	MilestonesClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesClaimed,
			Help: HelpTextMilestonesClaimed,
		},
	)

	SelectorsRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSelectorsRedeemed,
			Help: HelpTextSelectorsRedeemed,
		},
		[]string{LabelRarity},
	)

	RollTxRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRollTxRetries,
			Help: HelpTextRollTxRetries,
		},
	)
)

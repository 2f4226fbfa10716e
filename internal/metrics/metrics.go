package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// Economy Metrics
var (
	RewardsMinted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_rewards_minted_total",
			Help: "Drops minted by the reward selector, labeled by rarity",
		},
		[]string{"rarity"},
	)

	RewardRollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_reward_rolls_total",
			Help: "Qualifying post events, labeled by roll outcome",
		},
		[]string{"outcome"},
	)

	ReactionsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_reactions_applied_total",
			Help: "One-shot reactions consumed against posts",
		},
	)

	TradesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_trades_resolved_total",
			Help: "Trade offers moved to a terminal state, labeled by status",
		},
		[]string{"status"},
	)

	TradeConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_trade_conflicts_total",
			Help: "Trade resolutions lost to a concurrent caller or stale items",
		},
	)
)

// Roll outcome label values
const (
	OutcomeNoDrop   = "no_drop"
	OutcomeCooldown = "cooldown"
	OutcomeLostRace = "lost_race"
	OutcomeEmpty    = "empty_catalog"
	OutcomeMinted   = "minted"
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published on the bus",
		},
		[]string{"type"},
	)
)

package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
	MetricNameAuthFailures         = "auth_failures_total"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameRollsTotal         = "gacha_rolls_total"
	MetricNameHardPityHits       = "gacha_hard_pity_hits_total"
	MetricNameFeaturedWins       = "gacha_featured_wins_total"
	MetricNameGuaranteesConsumed = "gacha_guarantees_consumed_total"
	MetricNameFatePointsCredited = "gacha_fate_points_credited_total"
	MetricNameExchangesRedeemed  = "gacha_exchanges_redeemed_total"
	MetricNameMilestonesClaimed  = "gacha_milestones_claimed_total"
	MetricNameSelectorsRedeemed  = "gacha_selectors_redeemed_total"
	MetricNameRollTxRetries      = "gacha_roll_tx_retries_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextAuthFailures         = "Total number of rejected API key validations"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextRollsTotal         = "Total number of gacha rolls by rarity"
	HelpTextHardPityHits       = "Total number of rolls forced by hard pity"
	HelpTextFeaturedWins       = "Total number of featured legendary pulls"
	HelpTextGuaranteesConsumed = "Total number of featured guarantees consumed"
	HelpTextFatePointsCredited = "Total fate points credited"
	HelpTextExchangesRedeemed  = "Total fate-point exchanges by option"
	HelpTextMilestonesClaimed  = "Total milestone rewards claimed"
	HelpTextSelectorsRedeemed  = "Total selector tickets redeemed"
	HelpTextRollTxRetries      = "Total roll transaction retries after lock conflicts"
)

// ============================================================================
// Label Names
// ============================================================================
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelRarity = "rarity"
	LabelTier   = "tier"
	LabelOption = "option"
	LabelBanner = "banner"
)

// HTTPLatencyBuckets defines histogram buckets for request latency
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

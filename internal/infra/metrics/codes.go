package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(codesIssued, codeRedemptions) }

var codesIssued = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activation_codes_issued_total",
		Help: "Activation codes issued, per tier.",
	},
	[]string{"tier"},
)

var codeRedemptions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activation_code_redemptions_total",
		Help: "Redemption attempts per outcome: success, not_found, already_used, expired, error.",
	},
	[]string{"outcome"},
)

func IncCodeIssued(tier string)    { codesIssued.WithLabelValues(tier).Inc() }
func IncRedemption(outcome string) { codeRedemptions.WithLabelValues(outcome).Inc() }

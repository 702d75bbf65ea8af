package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(registrations, logins) }

var registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "account_registrations_total",
		Help: "Registration attempts per outcome: success, invalid_code, username_taken, validation, error.",
	},
	[]string{"outcome"},
)

var logins = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "account_logins_total",
		Help: "Login attempts per outcome: success, invalid_credentials, error.",
	},
	[]string{"outcome"},
)

func IncRegistration(outcome string) { registrations.WithLabelValues(outcome).Inc() }
func IncLogin(outcome string)        { logins.WithLabelValues(outcome).Inc() }

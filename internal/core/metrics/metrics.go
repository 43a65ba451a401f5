// Package metrics 业务指标（HTTP 指标见 middleware.Metrics）
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_registrations_total", Help: "Registered user accounts",
	})
	LoginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_login_failures_total", Help: "Rejected login attempts",
	})
	ServiceRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "community_service_request_events_total", Help: "Service request lifecycle events",
	}, []string{"event"})
	Applications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "community_volunteer_application_events_total", Help: "Volunteer application lifecycle events",
	}, []string{"event"})
	Donations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_donations_total", Help: "Accepted donations",
	})
	DonatedAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_donated_amount_total", Help: "Sum of accepted donation amounts",
	})
	Feedback = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_feedback_total", Help: "Feedback entries left",
	})
)

func init() {
	prometheus.MustRegister(Registrations, LoginFailures, ServiceRequests, Applications, Donations, DonatedAmount, Feedback)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftmeds_api_requests_total",
		Help: "Total number of backend API requests, by resource and outcome.",
	},
		[]string{"resource", "outcome"},
	)

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftmeds_orders_created_total",
		Help: "Total number of order line items successfully created.",
	})

	PaymentsCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftmeds_payments_captured_total",
		Help: "Total number of gateway payments verified by the backend.",
	})

	RefundsRequestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftmeds_refunds_requested_total",
		Help: "Total number of refund requests accepted by the backend.",
	})

	PollCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftmeds_notification_poll_cycles_total",
		Help: "Total number of completed notification poll cycles.",
	})

	NotificationsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftmeds_notifications_deleted_total",
		Help: "Total number of expired notifications deleted during cleanup.",
	})

	UnreadNotifications = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swiftmeds_unread_notifications",
		Help: "Current number of unread notifications for this session.",
	})
)

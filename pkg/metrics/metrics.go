package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Các metric nghiệp vụ của storefront, đăng ký vào default registry
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_quotes_total",
			Help: "Price quotes built, labelled by whether a coupon was applied",
		},
		[]string{"coupon"},
	)

	OrdersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders placed by payment method",
		},
		[]string{"payment_method"},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_refunds_total",
			Help: "Refund attempts by outcome (credited, skipped, duplicate, failed) and event",
		},
		[]string{"outcome", "event"},
	)

	RefundedAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_refunded_amount_total",
			Help: "Sum of amounts credited to wallets as refunds",
		},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_job_runs_total",
			Help: "Background job executions by task type and result",
		},
		[]string{"task", "result"},
	)
)

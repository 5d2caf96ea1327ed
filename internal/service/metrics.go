package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
	"github.com/CortinezO98/MisVigencias/internal/model"
)

var (
	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_total",
			Help: "Notification decisions by channel and status",
		},
		[]string{"channel", "status"},
	)
	runDurationSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_run_duration_seconds",
			Help: "Wall time of the last reminder pass",
		},
	)
	runObligations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminder_run_outcomes",
			Help: "Total outcomes of the last reminder pass",
		},
	)
)

func init() {
	prometheus.MustRegister(remindersTotal, runDurationSeconds, runObligations)
}

func countReminder(channel internaltypes.Channel, status internaltypes.Status) {
	remindersTotal.With(prometheus.Labels{
		"channel": channel.String(),
		"status":  status.String(),
	}).Inc()
}

func observeRun(summary model.Summary, elapsed time.Duration) {
	runDurationSeconds.Set(elapsed.Seconds())
	runObligations.Set(float64(summary.Sent + summary.WhatsApp + summary.Push + summary.Skipped + summary.Failed))
}

// PushMetrics ships the run's metrics to a Pushgateway. The engine is a
// once-a-day batch process, so there is no /metrics endpoint to scrape.
func PushMetrics(gatewayURL string) error {
	return push.New(gatewayURL, "mis_vigencias_reminders").
		Collector(remindersTotal).
		Collector(runDurationSeconds).
		Collector(runObligations).
		Push()
}

// Package metrics reports custom events, metrics and method traces to New
// Relic. Every helper is a no-op when the context carries no application.
package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type appContextKey struct{}

// NewContext returns a context carrying app. A nil app leaves ctx unchanged.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, appContextKey{}, app)
}

func withApp(ctx context.Context, fn func(app *newrelic.Application)) {
	if app, ok := ctx.Value(appContextKey{}).(*newrelic.Application); ok && app != nil {
		fn(app)
	}
}

// RecordEvent records a custom event with the given attributes.
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	withApp(ctx, func(app *newrelic.Application) {
		app.RecordCustomEvent(eventName, attributes)
	})
}

// RecordCount records a count metric.
func RecordCount(ctx context.Context, metricName string, count uint64) {
	withApp(ctx, func(app *newrelic.Application) {
		app.RecordCustomMetric(metricName, float64(count))
	})
}

// RecordDuration records a duration metric in milliseconds.
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	withApp(ctx, func(app *newrelic.Application) {
		app.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	})
}

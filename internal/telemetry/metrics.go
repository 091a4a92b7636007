package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/teamspace-io/teamspace"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Gateway metrics
	AuthDecisionsTotal  metric.Int64Counter
	ScopeDenialsTotal   metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	SessionsIssuedTotal metric.Int64Counter

	// API metrics
	ProfileUpdatesTotal   metric.Int64Counter
	OnboardingCompletions metric.Int64Counter
	InvitesRedeemedTotal  metric.Int64Counter
	EnvelopeFailuresTotal metric.Int64Counter
	PanicsRecoveredTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.AuthDecisionsTotal, _ = meter.Int64Counter(
		"teamspace.gateway.decisions.total",
		metric.WithDescription("Total number of gateway authorization decisions"),
		metric.WithUnit("{decision}"),
	)

	m.ScopeDenialsTotal, _ = meter.Int64Counter(
		"teamspace.gateway.scope_denials.total",
		metric.WithDescription("Total number of workspace scope check denials"),
		metric.WithUnit("{denial}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"teamspace.http.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"),
	)

	m.SessionsIssuedTotal, _ = meter.Int64Counter(
		"teamspace.sessions.issued.total",
		metric.WithDescription("Total number of browser sessions issued"),
		metric.WithUnit("{session}"),
	)

	m.ProfileUpdatesTotal, _ = meter.Int64Counter(
		"teamspace.profiles.updates.total",
		metric.WithDescription("Total number of profile updates"),
		metric.WithUnit("{update}"),
	)

	m.OnboardingCompletions, _ = meter.Int64Counter(
		"teamspace.onboarding.completions.total",
		metric.WithDescription("Total number of completed onboardings"),
		metric.WithUnit("{onboarding}"),
	)

	m.InvitesRedeemedTotal, _ = meter.Int64Counter(
		"teamspace.invites.redeemed.total",
		metric.WithDescription("Total number of redeemed workspace invites"),
		metric.WithUnit("{invite}"),
	)

	m.EnvelopeFailuresTotal, _ = meter.Int64Counter(
		"teamspace.http.envelope_failures.total",
		metric.WithDescription("Total number of failure envelopes emitted"),
		metric.WithUnit("{failure}"),
	)

	m.PanicsRecoveredTotal, _ = meter.Int64Counter(
		"teamspace.http.panics_recovered.total",
		metric.WithDescription("Total number of panics recovered at the envelope boundary"),
		metric.WithUnit("{panic}"),
	)

	return m
}

// RecordAuthDecision records one gateway authorization decision.
func (m *Metrics) RecordAuthDecision(ctx context.Context, requirement, outcome string) {
	m.AuthDecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("requirement", requirement),
		attribute.String("outcome", outcome),
	))
}

// RecordEnvelopeFailure records one failure envelope by taxonomy code.
func (m *Metrics) RecordEnvelopeFailure(ctx context.Context, code string) {
	m.EnvelopeFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
	))
}

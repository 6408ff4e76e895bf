// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides logging, tracing, and metrics for the
// query pipeline.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics tracks request volume, planner degradation, and step
// behavior for production monitoring.
type PipelineMetrics struct {
	// requestCounter tracks handled requests by outcome
	requestCounter metric.Int64Counter

	// fallbackCounter tracks planner degradations to rule-based plans
	fallbackCounter metric.Int64Counter

	// stepDuration tracks per-tool execution time in milliseconds
	stepDuration metric.Int64Histogram

	// verificationFailures tracks failed output verifications by tool
	verificationFailures metric.Int64Counter
}

// NewPipelineMetrics creates a pipeline metrics tracker with OTEL meters.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	meter := otel.Meter("suqi/pipeline")

	requestCounter, err := meter.Int64Counter(
		"suqi.pipeline.requests",
		metric.WithDescription("Handled requests by intent and outcome"),
	)
	if err != nil {
		return nil, err
	}

	fallbackCounter, err := meter.Int64Counter(
		"suqi.planner.fallbacks",
		metric.WithDescription("Plans produced by the rule-based fallback"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Int64Histogram(
		"suqi.executor.step.duration",
		metric.WithDescription("Per-tool step execution time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	verificationFailures, err := meter.Int64Counter(
		"suqi.executor.verification.failures",
		metric.WithDescription("Failed output verifications by tool"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		requestCounter:       requestCounter,
		fallbackCounter:      fallbackCounter,
		stepDuration:         stepDuration,
		verificationFailures: verificationFailures,
	}, nil
}

// RecordRequest counts one handled request.
func (pm *PipelineMetrics) RecordRequest(ctx context.Context, intent string, success bool) {
	if pm == nil {
		return
	}
	pm.requestCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("intent", intent),
			attribute.Bool("success", success),
		),
	)
}

// RecordFallback counts one planner degradation with its cause.
func (pm *PipelineMetrics) RecordFallback(ctx context.Context, reason string) {
	if pm == nil {
		return
	}
	pm.fallbackCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
		),
	)
}

// RecordStep records the execution time and outcome of one plan step.
func (pm *PipelineMetrics) RecordStep(ctx context.Context, tool string, durationMS int64, success bool) {
	if pm == nil {
		return
	}
	pm.stepDuration.Record(ctx, durationMS,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.Bool("success", success),
		),
	)
}

// RecordVerificationFailure counts a tool output that failed verification.
func (pm *PipelineMetrics) RecordVerificationFailure(ctx context.Context, tool string) {
	if pm == nil {
		return
	}
	pm.verificationFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
		),
	)
}

package services

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("github.com/hanko-field/configurator/internal/services")
	meter  = otel.Meter("github.com/hanko-field/configurator/internal/services")
)

var (
	compileRuns        metric.Int64Counter
	parametersMapped   metric.Int64Counter
	parametersSkipped  metric.Int64Counter
	validationIssues   metric.Int64Counter
	groupCacheRequests metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		compileRuns, err = meter.Int64Counter(
			"configurator.compile.runs",
			metric.WithDescription("Total number of parameter set compile runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parametersMapped, err = meter.Int64Counter(
			"configurator.parameters.mapped",
			metric.WithDescription("Parameters included in a mapping"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parametersSkipped, err = meter.Int64Counter(
			"configurator.parameters.skipped",
			metric.WithDescription("Parameters left out of a mapping"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		validationIssues, err = meter.Int64Counter(
			"configurator.validation.issues",
			metric.WithDescription("Validation findings by severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		groupCacheRequests, err = meter.Int64Counter(
			"configurator.rgb_group_cache.requests",
			metric.WithDescription("RGB group cache lookups by result"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordCompile(ctx context.Context, mapped, skipped int) {
	if err := initMetrics(); err != nil {
		return
	}
	compileRuns.Add(ctx, 1)
	parametersMapped.Add(ctx, int64(mapped))
	parametersSkipped.Add(ctx, int64(skipped))
}

func recordValidation(ctx context.Context, report ValidationReport) {
	if err := initMetrics(); err != nil {
		return
	}
	counts := map[string]int{"error": len(report.Errors), "warning": len(report.Warnings), "suggestion": len(report.Suggestions)}
	for severity, n := range counts {
		if n > 0 {
			validationIssues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("severity", severity)))
		}
	}
}

func recordGroupCacheLookup(ctx context.Context, hit bool) {
	if err := initMetrics(); err != nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	groupCacheRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hanko-field/configurator/internal/nodemap"
	"github.com/hanko-field/configurator/internal/platform/requestctx"
)

var (
	// ErrConfiguratorInvalidInput indicates the request failed validation.
	ErrConfiguratorInvalidInput = errors.New("configurator: invalid input")
	// ErrConfiguratorNotFound indicates no compiled state exists for the product.
	ErrConfiguratorNotFound = errors.New("configurator: not found")
	// ErrConfiguratorUnavailable indicates the service is not wired.
	ErrConfiguratorUnavailable = errors.New("configurator: unavailable")
)

const (
	defaultConfiguratorCacheTTL  = 30 * time.Minute
	defaultConfiguratorMaxParams = 2000
	maxConfiguratorProductID     = 128
	configuratorRunIDPrefix      = "run_"
)

// ConfiguratorServiceDeps bundles the collaborators required by the configurator service.
type ConfiguratorServiceDeps struct {
	// EngineOptions configure every engine the service builds, e.g. rules and scene labels.
	EngineOptions []nodemap.Option
	Clock         func() time.Time
	IDGenerator   func() string
	Logger        func(context.Context, string, map[string]any)
	CacheTTL      time.Duration
	MaxParameters int
	// SanitizeFragments echoes sanitised fragments of mapped parameters in compile results.
	SanitizeFragments bool
}

type configuratorService struct {
	engineOptions []nodemap.Option
	validator     *nodemap.Engine
	now           func() time.Time
	newID         func() string
	logger        func(context.Context, string, map[string]any)
	groups        *rgbGroupCache
	maxParams     int
	sanitize      bool
}

// NewConfiguratorService constructs the configurator service.
func NewConfiguratorService(deps ConfiguratorServiceDeps) (ConfiguratorService, error) {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	cacheTTL := deps.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultConfiguratorCacheTTL
	}

	maxParams := deps.MaxParameters
	if maxParams <= 0 {
		maxParams = defaultConfiguratorMaxParams
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	opts := append([]nodemap.Option(nil), deps.EngineOptions...)
	now := func() time.Time { return clock().UTC() }

	return &configuratorService{
		engineOptions: opts,
		validator:     nodemap.New(opts...),
		now:           now,
		newID:         func() string { return configuratorRunIDPrefix + strings.ToLower(idGen()) },
		logger:        logger,
		groups:        newRGBGroupCache(cacheTTL, now),
		maxParams:     maxParams,
		sanitize:      deps.SanitizeFragments,
	}, nil
}

// Compile maps the parameter set and caches its RGB groups under the product id.
func (s *configuratorService) Compile(ctx context.Context, cmd CompileCommand) (CompileResult, error) {
	if s == nil {
		return CompileResult{}, ErrConfiguratorUnavailable
	}

	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" || len(productID) > maxConfiguratorProductID {
		return CompileResult{}, ErrConfiguratorInvalidInput
	}
	if len(cmd.Parameters) == 0 || len(cmd.Parameters) > s.maxParams {
		return CompileResult{}, ErrConfiguratorInvalidInput
	}

	runID := s.newID()
	ctx = requestctx.WithRunID(ctx, runID)
	ctx, span := tracer.Start(ctx, "configurator.compile", trace.WithAttributes(
		attribute.String("configurator.product_id", productID),
		attribute.String("configurator.run_id", runID),
		attribute.Int("configurator.parameters", len(cmd.Parameters)),
	))
	defer span.End()

	var skipped []SkippedParameter
	opts := make([]nodemap.Option, 0, len(s.engineOptions)+1)
	opts = append(opts, s.engineOptions...)
	engine := nodemap.New(append(opts, nodemap.WithSkipHook(func(p Parameter, err error) {
		entry := SkippedParameter{NodeID: strings.TrimSpace(p.NodeID), Reason: err.Error()}
		skipped = append(skipped, entry)
		s.logger(ctx, "configurator.parameter.skipped", map[string]any{
			"productId": productID,
			"nodeId":    entry.NodeID,
			"reason":    entry.Reason,
		})
	}))...)

	mapping := engine.Assemble(cmd.Parameters)
	s.groups.Put(productID, runID, mapping.RGBGroups)

	result := CompileResult{
		RunID:      runID,
		ProductID:  productID,
		Mapping:    mapping,
		Skipped:    skipped,
		CompiledAt: s.now(),
	}
	if s.sanitize {
		result.Fragments = make(map[string]string, len(mapping.Parameters))
		for nodeID, info := range mapping.Parameters {
			result.Fragments[nodeID] = sanitizeFragment(info.RawFragment)
		}
	}

	recordCompile(ctx, len(mapping.Parameters), len(skipped))
	span.SetAttributes(
		attribute.Int("configurator.mapped", len(mapping.Parameters)),
		attribute.Int("configurator.skipped", len(skipped)),
	)
	if len(mapping.Parameters) == 0 {
		span.SetStatus(codes.Error, "no parameters mapped")
	}

	s.logger(ctx, "configurator.compile.completed", map[string]any{
		"productId":     productID,
		"mapped":        len(mapping.Parameters),
		"skipped":       len(skipped),
		"nodeMappings":  len(mapping.NodeMappings),
		"colorMappings": len(mapping.ColorMappings),
		"rgbGroups":     len(mapping.RGBGroups),
	})
	return result, nil
}

// Validate reports errors, warnings and suggestions for the parameter set.
func (s *configuratorService) Validate(ctx context.Context, cmd ValidateCommand) (ValidationReport, error) {
	if s == nil || s.validator == nil {
		return ValidationReport{}, ErrConfiguratorUnavailable
	}
	if len(cmd.Parameters) == 0 || len(cmd.Parameters) > s.maxParams {
		return ValidationReport{}, ErrConfiguratorInvalidInput
	}

	ctx, span := tracer.Start(ctx, "configurator.validate", trace.WithAttributes(
		attribute.Int("configurator.parameters", len(cmd.Parameters)),
	))
	defer span.End()

	report := s.validator.Validate(cmd.Parameters)
	recordValidation(ctx, report)

	s.logger(ctx, "configurator.validate.completed", map[string]any{
		"valid":       report.Valid,
		"errors":      len(report.Errors),
		"warnings":    len(report.Warnings),
		"suggestions": len(report.Suggestions),
	})
	return report, nil
}

// RGBGroups returns the groups recorded by the latest compile of the product.
func (s *configuratorService) RGBGroups(ctx context.Context, productID string) (map[string]RGBGroup, error) {
	if s == nil || s.groups == nil {
		return nil, ErrConfiguratorUnavailable
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrConfiguratorInvalidInput
	}

	entry, ok := s.groups.Get(productID)
	recordGroupCacheLookup(ctx, ok)
	if !ok {
		return nil, ErrConfiguratorNotFound
	}
	ctx = requestctx.WithRunID(ctx, entry.runID)
	s.logger(ctx, "configurator.rgb_groups.served", map[string]any{
		"productId": productID,
		"groups":    len(entry.groups),
	})
	return entry.groups, nil
}

// DefaultColor resolves the initial colour option.
func (s *configuratorService) DefaultColor(_ context.Context, cmd DefaultColorCommand) (ColorChoice, error) {
	if s == nil {
		return ColorChoice{}, ErrConfiguratorUnavailable
	}
	choice, ok := SelectDefaultColor(cmd.Options, cmd.DefaultID)
	if !ok {
		return ColorChoice{}, ErrConfiguratorInvalidInput
	}
	return choice, nil
}

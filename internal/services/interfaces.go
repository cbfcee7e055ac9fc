package services

import (
	"context"
	"time"

	domain "github.com/hanko-field/configurator/internal/domain"
	"github.com/hanko-field/configurator/internal/nodemap"
)

// Type aliases expose engine and domain models to callers of the services package.
type (
	Parameter        = domain.Parameter
	ColorOption      = domain.ColorOption
	UniversalMapping = nodemap.UniversalMapping
	ValidationReport = nodemap.Report
	RGBGroup         = nodemap.RGBGroup
)

// ConfiguratorService compiles product parameter sets into the lookup structures used by the
// authoring surface and the scene binding layer.
type ConfiguratorService interface {
	// Compile maps a parameter set and remembers its colour groups for the product.
	Compile(ctx context.Context, cmd CompileCommand) (CompileResult, error)
	// Validate reports problems in a parameter set without mapping it.
	Validate(ctx context.Context, cmd ValidateCommand) (ValidationReport, error)
	// RGBGroups returns the colour groups of the most recent compile for a product.
	RGBGroups(ctx context.Context, productID string) (map[string]RGBGroup, error)
	// DefaultColor picks the initial colour from a product's options.
	DefaultColor(ctx context.Context, cmd DefaultColorCommand) (ColorChoice, error)
}

// CompileCommand carries the parameter set of one product.
type CompileCommand struct {
	ProductID  string
	Parameters []Parameter
}

// CompileResult is the outcome of one compile run.
type CompileResult struct {
	RunID      string
	ProductID  string
	Mapping    UniversalMapping
	Skipped    []SkippedParameter
	CompiledAt time.Time
	// Fragments holds sanitised copies of the mapped raw fragments keyed by node id.
	Fragments map[string]string
}

// SkippedParameter names a parameter left out of a mapping and why.
type SkippedParameter struct {
	NodeID string
	Reason string
}

// ValidateCommand carries the parameter set to validate.
type ValidateCommand struct {
	Parameters []Parameter
}

// DefaultColorCommand carries the colour options of a product and its configured default.
type DefaultColorCommand struct {
	DefaultID string
	Options   []ColorOption
}

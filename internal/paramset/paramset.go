package paramset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hanko-field/configurator/internal/domain"
	"github.com/hanko-field/configurator/internal/nodemap"
)

// ErrEmptyDocument indicates a parameter-set document without any content.
var ErrEmptyDocument = errors.New("paramset: document is empty")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("channeltag", validateChannelTag)
	validate.RegisterStructValidation(validateRecordBounds, Record{})
}

// Document is a parameter set exported for one product. JSON documents are accepted too,
// since they are valid YAML.
type Document struct {
	ProductID  string   `yaml:"product_id" json:"product_id" validate:"omitempty,max=128"`
	Parameters []Record `yaml:"parameters" json:"parameters" validate:"dive"`
}

// Record is the wire form of domain.Parameter.
type Record struct {
	NodeID       string   `yaml:"node_id" json:"node_id" validate:"max=512"`
	DisplayName  string   `yaml:"display_name,omitempty" json:"display_name,omitempty" validate:"max=256"`
	ControlType  string   `yaml:"control_type,omitempty" json:"control_type,omitempty" validate:"max=32"`
	DefaultValue *string  `yaml:"default_value,omitempty" json:"default_value,omitempty" validate:"omitempty,max=1024"`
	Min          *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max          *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Step         *float64 `yaml:"step,omitempty" json:"step,omitempty" validate:"omitempty,gt=0"`
	Section      string   `yaml:"section,omitempty" json:"section,omitempty" validate:"max=128"`
	GroupTag     string   `yaml:"group_tag,omitempty" json:"group_tag,omitempty" validate:"max=128"`
	ChannelTag   string   `yaml:"channel_tag,omitempty" json:"channel_tag,omitempty" validate:"channeltag"`
	RawFragment  string   `yaml:"raw_fragment,omitempty" json:"raw_fragment,omitempty" validate:"max=65536"`
}

// Validate checks field lengths, channel tags and bound ordering.
func (d *Document) Validate() error {
	return validate.Struct(d)
}

// Validate checks a single record.
func (r *Record) Validate() error {
	return validate.Struct(r)
}

// LoadFile reads and parses a parameter-set document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter set %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML or JSON parameter-set document.
func Parse(data []byte) (*Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse parameter set: %w", err)
	}
	doc.ProductID = strings.TrimSpace(doc.ProductID)
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DomainParameters converts the records into domain parameters.
func (d *Document) DomainParameters() []domain.Parameter {
	return ToParameters(d.Parameters)
}

// ToParameters converts wire records into domain parameters.
func ToParameters(records []Record) []domain.Parameter {
	params := make([]domain.Parameter, 0, len(records))
	for _, r := range records {
		params = append(params, r.Parameter())
	}
	return params
}

// Parameter converts the record into a domain parameter.
func (r Record) Parameter() domain.Parameter {
	return domain.Parameter{
		NodeID:       strings.TrimSpace(r.NodeID),
		DisplayName:  r.DisplayName,
		ControlType:  r.ControlType,
		DefaultValue: r.DefaultValue,
		Min:          r.Min,
		Max:          r.Max,
		Step:         r.Step,
		Section:      r.Section,
		GroupTag:     r.GroupTag,
		ChannelTag:   r.ChannelTag,
		RawFragment:  r.RawFragment,
	}
}

// FieldErrors flattens validator errors into "field path" to "failed rule" pairs. Other
// errors yield nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Namespace()] = rule
	}
	return out
}

func validateChannelTag(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	if strings.TrimSpace(tag) == "" {
		return true
	}
	_, ok := nodemap.ParseChannel(tag)
	return ok
}

func validateRecordBounds(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(Record)
	if !ok {
		return
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		sl.ReportError(r.Max, "Max", "Max", "gtefield", "Min")
	}
}

package processors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aescanero/dago-node-render/internal/render"
)

// Processor types accepted in pipeline specs
const (
	TypeTrim      = "trim"
	TypeSanitize  = "sanitize"
	TypeStripTags = "strip_tags"
	TypeAppend    = "append"
	TypePrepend   = "prepend"
	TypeLayout    = "layout"
	TypeWhen      = "when"
	TypeSwitch    = "switch"
)

// Spec describes one post-processor.
type Spec struct {
	Type      string `yaml:"type"`
	Policy    string `yaml:"policy,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Template  string `yaml:"template,omitempty"`
	Condition string `yaml:"condition,omitempty"`
	Processor *Spec  `yaml:"processor,omitempty"`

	// switch only
	Cases   []CaseSpec `yaml:"cases,omitempty"`
	Default *Spec      `yaml:"default,omitempty"`
}

// CaseSpec is one branch of a switch processor.
type CaseSpec struct {
	Condition string `yaml:"condition"`
	Processor Spec   `yaml:"processor"`
}

// Pipeline is the on-disk form of an ordered processor list.
type Pipeline struct {
	PostProcessors []Spec `yaml:"post_processors"`
}

// ConditionEvaluator matches conditions at render time and checks them when
// the pipeline is built.
type ConditionEvaluator interface {
	Matcher
	ValidateExpression(expression string) error
}

// templateCatalog is implemented by engines that can report registered names.
type templateCatalog interface {
	Has(name string) bool
}

// Deps are the collaborators some processor types need.
type Deps struct {
	Engine    render.Engine
	Evaluator ConditionEvaluator
	Logger    *zap.Logger
}

// LoadPipeline reads a YAML pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("processors: read %s: %w", path, err)
	}
	return ParsePipeline(data)
}

// ParsePipeline decodes a YAML pipeline document.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var pipeline Pipeline
	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return nil, fmt.Errorf("processors: parse pipeline: %w", err)
	}
	return &pipeline, nil
}

// FromNames turns a list of parameterless processor types into specs.
func FromNames(names []string) []Spec {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		specs = append(specs, Spec{Type: trimmed})
	}
	return specs
}

// Build constructs processors from specs, preserving order.
func Build(specs []Spec, deps Deps) ([]render.Processor, error) {
	out := make([]render.Processor, 0, len(specs))
	for i, spec := range specs {
		p, err := build(spec, deps)
		if err != nil {
			return nil, fmt.Errorf("processors: entry %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func build(spec Spec, deps Deps) (render.Processor, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case TypeTrim:
		return Trim(), nil
	case TypeSanitize:
		return Sanitize(spec.Policy)
	case TypeStripTags:
		return StripTags(), nil
	case TypeAppend:
		return Append(spec.Value), nil
	case TypePrepend:
		return Prepend(spec.Value), nil
	case TypeLayout:
		if deps.Engine == nil {
			return nil, errors.New("layout requires a template engine")
		}
		if spec.Template == "" {
			return nil, errors.New("layout requires a template")
		}
		if catalog, ok := deps.Engine.(templateCatalog); ok && !catalog.Has(spec.Template) {
			return nil, fmt.Errorf("layout template %q is not registered", spec.Template)
		}
		return Layout(deps.Engine, spec.Template, deps.Logger), nil
	case TypeWhen:
		if deps.Evaluator == nil {
			return nil, errors.New("when requires an evaluator")
		}
		if spec.Condition == "" {
			return nil, errors.New("when requires a condition")
		}
		if err := deps.Evaluator.ValidateExpression(spec.Condition); err != nil {
			return nil, fmt.Errorf("when: condition %q: %w", spec.Condition, err)
		}
		if spec.Processor == nil {
			return nil, errors.New("when requires a processor")
		}
		inner, err := build(*spec.Processor, deps)
		if err != nil {
			return nil, fmt.Errorf("when: %w", err)
		}
		return When(deps.Evaluator, spec.Condition, inner, deps.Logger), nil
	case TypeSwitch:
		return buildSwitch(spec, deps)
	case "":
		return nil, errors.New("type is required")
	default:
		return nil, fmt.Errorf("unknown processor type %q", spec.Type)
	}
}

func buildSwitch(spec Spec, deps Deps) (render.Processor, error) {
	if deps.Evaluator == nil {
		return nil, errors.New("switch requires an evaluator")
	}
	if len(spec.Cases) == 0 {
		return nil, errors.New("switch requires at least one case")
	}

	cases := make([]Case, 0, len(spec.Cases))
	for i, c := range spec.Cases {
		if c.Condition == "" {
			return nil, fmt.Errorf("switch case %d: condition is required", i)
		}
		if err := deps.Evaluator.ValidateExpression(c.Condition); err != nil {
			return nil, fmt.Errorf("switch case %d: condition %q: %w", i, c.Condition, err)
		}
		p, err := build(c.Processor, deps)
		if err != nil {
			return nil, fmt.Errorf("switch case %d: %w", i, err)
		}
		cases = append(cases, Case{Condition: c.Condition, Processor: p})
	}

	var fallback render.Processor
	if spec.Default != nil {
		p, err := build(*spec.Default, deps)
		if err != nil {
			return nil, fmt.Errorf("switch default: %w", err)
		}
		fallback = p
	}

	return Switch(deps.Evaluator, cases, fallback, deps.Logger), nil
}

package render

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Engine renders a named template. Render must return once the output is
// complete; engines that render asynchronously block until they finish.
type Engine interface {
	Render(name string, data any) (string, error)
}

// TemplateFunc is a template invoked directly with the render context.
type TemplateFunc func(data any) (string, error)

// CallbackTemplate is a template that reports its output through done.
// done must be called exactly once, before the template returns.
type CallbackTemplate func(data any, done func(err error, out string))

// Renderer is the handle hosts use to render and manage post-processors.
type Renderer interface {
	Render(tmpl any, data any) (string, error)
	AddPostProcessor(p Processor)
	InsertPostProcessor(p Processor, index int)
	RemovePostProcessor(p Processor) bool
}

// Options configures an Adapter. PostProcessor and PostProcessors are
// equivalent; when both are set PostProcessor runs first.
type Options struct {
	Engine         Engine
	Logger         *zap.Logger
	PostProcessor  Processor
	PostProcessors []Processor
}

// Adapter renders templates and applies the post-processor chain.
type Adapter struct {
	engine Engine
	chain  *Chain
	logger *zap.Logger
}

// Ensure Adapter implements the Renderer interface.
var _ Renderer = (*Adapter)(nil)

// New creates an adapter. The caller is responsible for handing it to the
// host that renders through it.
func New(opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	initial := make([]Processor, 0, len(opts.PostProcessors)+1)
	if opts.PostProcessor != nil {
		initial = append(initial, opts.PostProcessor)
	}
	initial = append(initial, opts.PostProcessors...)

	return &Adapter{
		engine: opts.Engine,
		chain:  NewChain(initial...),
		logger: logger,
	}
}

// Render resolves tmpl into markup and runs it through the post-processor
// chain. Template and engine failures, including template values of an
// unsupported type, are logged and render as an empty string; only a missing
// template is returned as an error.
func (a *Adapter) Render(tmpl any, data any) (string, error) {
	if isFalsy(tmpl) {
		return "", ErrTemplateNotFound
	}

	var (
		html string
		err  error
	)

	switch t := tmpl.(type) {
	case string:
		html, err = a.renderNamed(t, data)
	case TemplateFunc:
		html, err = t(data)
	case func(any) (string, error):
		html, err = t(data)
	case CallbackTemplate:
		html, err = a.renderCallback(t, data)
	case func(any, func(error, string)):
		html, err = a.renderCallback(t, data)
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedTemplate, tmpl)
	}

	if err != nil {
		a.logger.Error("template render error",
			zap.String("template", describeTemplate(tmpl)),
			zap.Error(err),
		)
		html = ""
	}

	return a.chain.Process(html, data), nil
}

// AddPostProcessor appends p to the chain.
func (a *Adapter) AddPostProcessor(p Processor) {
	a.chain.Add(p)
}

// InsertPostProcessor inserts p at index, clamped to the chain bounds.
func (a *Adapter) InsertPostProcessor(p Processor, index int) {
	a.chain.Insert(p, index)
}

// RemovePostProcessor removes the first occurrence of p.
func (a *Adapter) RemovePostProcessor(p Processor) bool {
	return a.chain.Remove(p)
}

// Chain returns the adapter's post-processor chain.
func (a *Adapter) Chain() *Chain {
	return a.chain
}

func (a *Adapter) renderNamed(name string, data any) (string, error) {
	if a.engine == nil {
		return "", ErrNoEngine
	}
	return a.engine.Render(name, data)
}

// renderCallback enforces the once-only completion contract.
func (a *Adapter) renderCallback(tmpl func(any, func(error, string)), data any) (string, error) {
	var (
		html   string
		err    error
		called bool
	)

	tmpl(data, func(cbErr error, out string) {
		if called {
			a.logger.Warn("template completion called more than once, ignoring")
			return
		}
		called = true
		html, err = out, cbErr
	})

	if !called {
		a.logger.Warn("template returned without calling its completion")
	}
	return html, err
}

// isFalsy reports nil, empty strings, nil funcs and other zero values.
func isFalsy(tmpl any) bool {
	if tmpl == nil {
		return true
	}
	return reflect.ValueOf(tmpl).IsZero()
}

func describeTemplate(tmpl any) string {
	if name, ok := tmpl.(string); ok {
		return name
	}
	return fmt.Sprintf("%T", tmpl)
}

package processors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-node-render/internal/eval/cel"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/render"
)

func TestSimpleProcessors(t *testing.T) {
	tests := []struct {
		name string
		p    render.Processor
		in   string
		want string
	}{
		{name: "trim", p: Trim(), in: "  <p>x</p>\n", want: "<p>x</p>"},
		{name: "append", p: Append("<footer/>"), in: "<p>x</p>", want: "<p>x</p><footer/>"},
		{name: "prepend", p: Prepend("<!doctype html>"), in: "<p>x</p>", want: "<!doctype html><p>x</p>"},
		{name: "strip tags", p: StripTags(), in: "<p>hi <b>there</b></p>", want: "hi there"},
		{name: "empty input", p: Trim(), in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Process(tt.in, nil))
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Run("ugc keeps safe markup", func(t *testing.T) {
		p, err := Sanitize(PolicyUGC)
		require.NoError(t, err)

		got := p.Process(`<p onclick="steal()">hi</p><script>alert(1)</script>`, nil)
		assert.Equal(t, "<p>hi</p>", got)
	})

	t.Run("strict removes all markup", func(t *testing.T) {
		p, err := Sanitize(PolicyStrict)
		require.NoError(t, err)

		assert.Equal(t, "hi", p.Process("<b>hi</b>", nil))
	})

	t.Run("default policy is ugc", func(t *testing.T) {
		p, err := Sanitize("")
		require.NoError(t, err)

		assert.Equal(t, "<b>hi</b>", p.Process("<b>hi</b>", nil))
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := Sanitize("lenient")
		assert.Error(t, err)
	})
}

func TestLayout(t *testing.T) {
	engine := template.NewEngine(nil)
	require.NoError(t, engine.RegisterTemplate("layouts/main", "<html><title>{{data.title}}</title>{{{body}}}</html>"))

	t.Run("wraps markup", func(t *testing.T) {
		p := Layout(engine, "layouts/main", nil)
		got := p.Process("<p>x</p>", map[string]any{"title": "Home"})
		assert.Equal(t, "<html><title>Home</title><p>x</p></html>", got)
	})

	t.Run("missing layout returns markup unchanged", func(t *testing.T) {
		p := Layout(engine, "layouts/missing", nil)
		assert.Equal(t, "<p>x</p>", p.Process("<p>x</p>", nil))
	})
}

type fixedMatcher struct {
	matched bool
	err     error
	seen    any
}

func (m *fixedMatcher) Match(_ context.Context, _ string, data any) (bool, error) {
	m.seen = data
	return m.matched, m.err
}

func TestWhen(t *testing.T) {
	ctx := map[string]any{"person": "you"}

	t.Run("applies when matched", func(t *testing.T) {
		m := &fixedMatcher{matched: true}
		p := When(m, "true", Append("!"), nil)
		assert.Equal(t, "x!", p.Process("x", ctx))
		assert.Equal(t, ctx, m.seen)
	})

	t.Run("skips when not matched", func(t *testing.T) {
		p := When(&fixedMatcher{}, "false", Append("!"), nil)
		assert.Equal(t, "x", p.Process("x", ctx))
	})

	t.Run("skips on evaluation error", func(t *testing.T) {
		p := When(&fixedMatcher{matched: true, err: errors.New("bad")}, "?", Append("!"), nil)
		assert.Equal(t, "x", p.Process("x", ctx))
	})

	t.Run("cel condition over render context", func(t *testing.T) {
		p := When(cel.NewEvaluator(), "data.person == 'you'", Append(" matched"), nil)
		assert.Equal(t, "x matched", p.Process("x", ctx))
		assert.Equal(t, "x", p.Process("x", map[string]any{"person": "me"}))
	})
}

func TestProcessorsInAdapter(t *testing.T) {
	sanitize, err := Sanitize(PolicyStrict)
	require.NoError(t, err)

	adapter := render.New(render.Options{
		PostProcessors: []render.Processor{Trim(), sanitize},
	})

	out, err := adapter.Render(render.TemplateFunc(func(any) (string, error) {
		return "  <b>bold</b>  ", nil
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, "bold", out)
}

func TestSwitch(t *testing.T) {
	evaluator := cel.NewEvaluator()
	p := Switch(evaluator, []Case{
		{Condition: "data.kind == 'mail'", Processor: Prepend("[mail]")},
		{Condition: "data.kind.startsWith('page')", Processor: Prepend("[page]")},
		{Condition: "data.kind == 'page'", Processor: Prepend("[never]")},
	}, Prepend("[other]"), nil)

	tests := []struct {
		kind string
		want string
	}{
		{kind: "mail", want: "[mail]x"},
		{kind: "page", want: "[page]x"},
		{kind: "feed", want: "[other]x"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Process("x", map[string]any{"kind": tt.kind}))
		})
	}

	t.Run("failing case is skipped", func(t *testing.T) {
		assert.Equal(t, "[other]x", p.Process("x", map[string]any{}))
	})

	t.Run("nil fallback keeps markup", func(t *testing.T) {
		noDefault := Switch(evaluator, []Case{
			{Condition: "data.kind == 'mail'", Processor: Prepend("[mail]")},
		}, nil, nil)
		assert.Equal(t, "x", noDefault.Process("x", map[string]any{"kind": "page"}))
	})
}

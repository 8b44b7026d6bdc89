package processors

import (
	"go.uber.org/zap"

	"github.com/aescanero/dago-node-render/internal/render"
)

// Layout wraps the markup in a layout template. The layout receives the markup
// as "body" and the render context as "data"; Handlebars layouts should use
// {{{body}}} to avoid escaping it. When the layout fails the markup is
// returned unwrapped.
func Layout(engine render.Engine, name string, logger *zap.Logger) render.Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return render.Func(func(html string, data any) string {
		out, err := engine.Render(name, map[string]any{
			"body": html,
			"data": data,
		})
		if err != nil {
			logger.Warn("layout render failed",
				zap.String("layout", name),
				zap.Error(err),
			)
			return html
		}
		return out
	})
}

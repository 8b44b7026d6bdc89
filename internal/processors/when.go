package processors

import (
	"context"

	"go.uber.org/zap"

	"github.com/aescanero/dago-node-render/internal/render"
)

// Matcher evaluates a boolean condition against the render context.
type Matcher interface {
	Match(ctx context.Context, expression string, data any) (bool, error)
}

// When applies p only when condition holds for the render context. A
// condition that fails to evaluate is treated as false.
func When(matcher Matcher, condition string, p render.Processor, logger *zap.Logger) render.Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return render.Func(func(html string, data any) string {
		matched, err := matcher.Match(context.Background(), condition, data)
		if err != nil {
			logger.Warn("processor condition evaluation error",
				zap.String("condition", condition),
				zap.Error(err),
			)
			return html
		}
		if !matched {
			return html
		}
		return p.Process(html, data)
	})
}

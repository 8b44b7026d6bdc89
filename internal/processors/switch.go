package processors

import (
	"context"

	"go.uber.org/zap"

	"github.com/aescanero/dago-node-render/internal/render"
)

// Case pairs a condition with the processor applied when it matches.
type Case struct {
	Condition string
	Processor render.Processor
}

// Switch applies the processor of the first case whose condition matches the
// render context, or fallback when none does. A nil fallback leaves the
// markup unchanged. Cases that fail to evaluate are skipped.
func Switch(matcher Matcher, cases []Case, fallback render.Processor, logger *zap.Logger) render.Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return render.Func(func(html string, data any) string {
		for i, c := range cases {
			matched, err := matcher.Match(context.Background(), c.Condition, data)
			if err != nil {
				logger.Warn("switch case evaluation error",
					zap.Int("case_index", i),
					zap.String("condition", c.Condition),
					zap.Error(err),
				)
				continue
			}
			if matched {
				logger.Debug("switch case matched",
					zap.Int("case_index", i),
					zap.String("condition", c.Condition),
				)
				return c.Processor.Process(html, data)
			}
		}

		if fallback == nil {
			return html
		}
		return fallback.Process(html, data)
	})
}

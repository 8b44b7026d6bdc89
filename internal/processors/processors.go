package processors

import (
	"fmt"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
	"github.com/microcosm-cc/bluemonday"

	"github.com/aescanero/dago-node-render/internal/render"
)

// Sanitizer policies
const (
	PolicyUGC    = "ugc"
	PolicyStrict = "strict"
)

// Trim removes leading and trailing whitespace.
func Trim() render.Processor {
	return render.Func(func(html string, _ any) string {
		return strings.TrimSpace(html)
	})
}

// Append adds suffix to the markup.
func Append(suffix string) render.Processor {
	return render.Func(func(html string, _ any) string {
		return html + suffix
	})
}

// Prepend adds prefix to the markup.
func Prepend(prefix string) render.Processor {
	return render.Func(func(html string, _ any) string {
		return prefix + html
	})
}

// StripTags removes every HTML tag, keeping text content.
func StripTags() render.Processor {
	return render.Func(func(html string, _ any) string {
		return strip.StripTags(html)
	})
}

// Sanitize filters markup through a bluemonday policy.
func Sanitize(policy string) (render.Processor, error) {
	p, err := sanitizePolicy(policy)
	if err != nil {
		return nil, err
	}
	return render.Func(func(html string, _ any) string {
		return p.Sanitize(html)
	}), nil
}

func sanitizePolicy(name string) (*bluemonday.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyUGC:
		return bluemonday.UGCPolicy(), nil
	case PolicyStrict:
		return bluemonday.StrictPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown sanitize policy %q", name)
	}
}

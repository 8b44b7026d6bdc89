package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
	"go.uber.org/zap"
)

// ErrTemplateNotRegistered is returned when rendering an unknown template name.
var ErrTemplateNotRegistered = errors.New("template not registered")

// partialsDir holds partials when loading a template directory.
const partialsDir = "partials"

var registerHelpersOnce sync.Once

// Engine renders Handlebars templates
type Engine struct {
	cache    map[string]*raymond.Template
	named    map[string]*raymond.Template
	partials map[string]string
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewEngine creates a new template engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := &Engine{
		cache:    make(map[string]*raymond.Template),
		named:    make(map[string]*raymond.Template),
		partials: make(map[string]string),
		logger:   logger,
	}

	// Helpers are process-wide in raymond
	registerHelpersOnce.Do(registerHelpers)

	return engine
}

// Render renders a registered template by name
func (e *Engine) Render(name string, data any) (string, error) {
	e.mu.RLock()
	tmpl, ok := e.named[name]
	e.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotRegistered, name)
	}

	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template %q execution failed: %w", name, err)
	}

	return result, nil
}

// RenderString renders an inline template source with the given data
func (e *Engine) RenderString(source string, data any) (string, error) {
	// Get or compile template
	tmpl, err := e.getTemplate(source)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	// Execute the template
	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// RegisterTemplate compiles source and stores it under name, replacing any
// previous template with the same name
func (e *Engine) RegisterTemplate(name, source string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("template name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tmpl, err := e.parse(source)
	if err != nil {
		return fmt.Errorf("template %q: %w", name, err)
	}

	if _, exists := e.named[name]; exists {
		e.logger.Debug("replacing template", zap.String("name", name))
	}
	e.named[name] = tmpl

	return nil
}

// RegisterPartial stores a partial. Partials apply to templates compiled
// after registration.
func (e *Engine) RegisterPartial(name, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.partials[name] = source
}

// LoadDir registers every file with the given extension below dir. Files in
// the partials directory become partials, all others become templates named
// by their slash separated path without extension.
func (e *Engine) LoadDir(dir, ext string) error {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return e.LoadFS(os.DirFS(dir), ext)
}

// LoadFS is LoadDir over an fs.FS
func (e *Engine) LoadFS(fsys fs.FS, ext string) error {
	var templates, partials []string

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(path, ext) {
			return nil
		}
		if strings.HasPrefix(path, partialsDir+"/") {
			partials = append(partials, path)
		} else {
			templates = append(templates, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk templates: %w", err)
	}

	// Partials first so templates can reference them
	for _, path := range partials {
		source, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read partial %s: %w", path, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, partialsDir+"/"), ext)
		e.RegisterPartial(name, string(source))
	}

	for _, path := range templates {
		source, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if err := e.RegisterTemplate(strings.TrimSuffix(path, ext), string(source)); err != nil {
			return err
		}
	}

	e.logger.Info("templates loaded",
		zap.Int("templates", len(templates)),
		zap.Int("partials", len(partials)),
	)

	return nil
}

// Has reports whether a template is registered under name
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.named[name]
	return ok
}

// Names returns the registered template names, sorted
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.named))
	for name := range e.named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(source string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[source]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[source]; ok {
		return tmpl, nil
	}

	tmpl, err := e.parse(source)
	if err != nil {
		return nil, err
	}

	// Cache the template
	e.cache[source] = tmpl

	return tmpl, nil
}

// parse compiles source with the engine partials. Callers hold the write lock.
func (e *Engine) parse(source string) (*raymond.Template, error) {
	tmpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if len(e.partials) > 0 {
		tmpl.RegisterPartials(e.partials)
	}
	return tmpl, nil
}

// registerHelpers registers custom Handlebars helpers
func registerHelpers() {
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	raymond.RegisterHelper("trim", func(str string) string {
		return strings.TrimSpace(str)
	})

	// default helper - return default value if first arg is empty
	raymond.RegisterHelper("default", func(value interface{}, defaultValue interface{}) interface{} {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})

	raymond.RegisterHelper("eq", func(a, b interface{}) bool {
		return a == b
	})

	raymond.RegisterHelper("ne", func(a, b interface{}) bool {
		return a != b
	})

	raymond.RegisterHelper("join", func(arr []interface{}, sep string) string {
		strs := make([]string, len(arr))
		for i, v := range arr {
			strs[i] = fmt.Sprint(v)
		}
		return strings.Join(strs, sep)
	})

	// raw helper - emit a value without HTML escaping
	raymond.RegisterHelper("raw", func(value string) raymond.SafeString {
		return raymond.SafeString(value)
	})
}

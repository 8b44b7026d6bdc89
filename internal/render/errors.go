package render

import "errors"

// Error is the named error shape hosts use to signal render failures.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return e.Name + ": " + e.Message
}

// Is matches any *Error carrying the same Name.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Name == t.Name
}

var (
	// ErrTemplateNotFound is returned when Render receives a nil or empty template.
	ErrTemplateNotFound = &Error{
		Name:    "TemplateNotFoundError",
		Message: "cannot render the template since it is nil, empty or a zero value",
	}

	// ErrUnsupportedTemplate is logged for template values of an unknown type.
	ErrUnsupportedTemplate = errors.New("unsupported template type")

	// ErrNoEngine is logged when a named template is rendered without an engine.
	ErrNoEngine = errors.New("no template engine configured")
)

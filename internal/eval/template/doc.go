// Package template provides the Handlebars engine that renders named templates
// for the render adapter.
//
// Templates are registered by name, either one at a time or by loading a
// directory. Files under a "partials" directory are registered as partials and
// can be referenced from every template loaded after them.
//
// Example usage:
//
//	engine := template.NewEngine(logger)
//	if err := engine.LoadDir("./templates", ".hbs"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// templates/pages/home.hbs -> "pages/home"
//	result, err := engine.Render("pages/home", data)
//
// Inline sources are compiled on first use and cached:
//
//	result, err := engine.RenderString("Hello {{uppercase name}}", data)
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//   - eq - Equality comparison
//   - ne - Inequality comparison
//   - join - Join array elements with separator
//   - raw - Emit a string without HTML escaping
package template

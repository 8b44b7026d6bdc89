// Package render implements the render adapter and its post-processor chain.
//
// The adapter resolves a template into markup, either by invoking it directly
// or by delegating to an external template engine, and then pipes the result
// through an ordered chain of post-processors.
//
// Example usage:
//
//	adapter := render.New(render.Options{
//	    Engine: engine,
//	    Logger: logger,
//	    PostProcessors: []render.Processor{
//	        processors.Trim(),
//	        processors.Sanitize(processors.PolicyUGC),
//	    },
//	})
//
//	html, err := adapter.Render("pages/home", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Templates can be:
//   - string - a template name resolved by the Engine
//   - TemplateFunc - invoked directly with the render context
//   - CallbackTemplate - invoked with a completion callback that must fire
//     exactly once before the call returns
//
// Post-processors run left to right and receive the render context unchanged:
//
//	upper := render.Func(func(html string, data any) string {
//	    return strings.ToUpper(html)
//	})
//	adapter.AddPostProcessor(upper)
//	adapter.InsertPostProcessor(banner, 0)
//	adapter.RemovePostProcessor(upper)
//
// An Adapter is not safe for concurrent mutation. Hosts that render from
// several goroutines must serialise AddPostProcessor/RemovePostProcessor
// against Render themselves.
package render

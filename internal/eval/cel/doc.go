// Package cel provides a CEL (Common Expression Language) evaluator used to
// gate post-processors on the render context.
//
// The render context is bound to the "data" variable. Maps are used as-is,
// other values are converted through their JSON form.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	matched, err := evaluator.Match(ctx, "data.user.role == 'admin'", renderData)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Presence tests: has(data.field)
//   - List operations: in, size
package cel

// Package processors provides the built-in post-processors for the render
// adapter and builds processor chains from configuration.
//
// Example pipeline file:
//
//	post_processors:
//	  - type: trim
//	  - type: layout
//	    template: layouts/main
//	  - type: when
//	    condition: "data.untrusted == true"
//	    processor:
//	      type: sanitize
//	      policy: ugc
//	  - type: switch
//	    cases:
//	      - condition: "data.format == 'text'"
//	        processor:
//	          type: strip_tags
//	    default:
//	      type: trim
//
// Build turns the specs into processors in file order:
//
//	pipeline, err := processors.LoadPipeline("pipeline.yaml")
//	procs, err := processors.Build(pipeline.PostProcessors, processors.Deps{
//	    Engine:    engine,
//	    Evaluator: cel.NewEvaluator(),
//	    Logger:    logger,
//	})
package processors

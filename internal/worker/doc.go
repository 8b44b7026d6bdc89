// Package worker implements the render worker lifecycle and Redis Streams integration.
//
// The worker consumes render requests from a Redis Stream, renders them through
// the render adapter it was constructed with, and publishes the markup to a
// result stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	adapter := render.New(render.Options{Engine: engine, Logger: logger})
//
//	worker := worker.NewWorker(cfg, redisClient, adapter, engine, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// Request messages carry a JSON "data" field:
//
//	{"request_id": "r-1", "template": "pages/home", "context": {"title": "Home"}}
//	{"request_id": "r-2", "source": "<p>{{title}}</p>", "context": {"title": "Inline"}}
//
// Results go to RESULT_STREAM, failures (bad payloads, missing templates) to
// RESULT_STREAM + ".errors". Every message is acknowledged.
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, redisClient, engine, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker

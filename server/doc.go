// Package server is the optional status HTTP surface: component health,
// build version and usage totals, served by Gin.
//
//	srv := server.New(cfg.Server, log)
//	srv.RegisterEndpoints("voicescribe", registry, usageStore)
//	registry.Register(server.NewComponent(srv))
//
// Routes:
//
//	GET /health   component health, 503 when any component is unhealthy
//	GET /version  build information
//	GET /stats    processed minutes, limit and top users
package server

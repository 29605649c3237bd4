// Package health serves liveness and readiness probes.
//
// A [Checker] holds named dependency checks (database, redis) and runs them
// concurrently under a timeout:
//
//	checker := health.New(health.WithLogger(log))
//	checker.Add("postgres", db.Healthcheck(pool))
//	mux.Get("/health/live", checker.Live)
//	mux.Get("/health/ready", checker.Ready)
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON through the Accept header or ?format=json.
package health

// Package redis opens [github.com/redis/go-redis/v9] clients from
// environment configuration and exposes health and shutdown hooks for them.
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	app.OnShutdown(redis.Shutdown(client))
package redis

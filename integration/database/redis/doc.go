// Package redis connects to the Redis instance producers publish tracker updates to.
//
//	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck returns a PING probe suitable for the readiness endpoint.
package redis

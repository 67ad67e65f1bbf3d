// Package relay routes asynchronously produced payloads to authenticated client connections.
//
// A Hub owns the session registry (connection ID to outbound conduit, key to connection ID)
// and a pending delivery queue per key. All of it lives on a single actor goroutine, so
// registration, authentication, delivery and retries never race with each other.
//
// # Lifecycle
//
//	hub, err := relay.New[string](keyStore, relay.WithLogger(log))
//	eg.Go(hub.Run(ctx))
//
//	out := hub.NewOutbound()
//	id, err := hub.Connect(ctx, out)
//	name, err := hub.Verify(ctx, key, id) // relay.ErrKeyNotFound for unknown keys
//
//	go func() {
//		for p := range out.C() {
//			// write p to the client
//		}
//	}()
//
//	_ = hub.Deliver(ctx, key, "payload")
//
//	out.Close()
//	_ = hub.Disconnect(ctx, id)
//	_ = hub.Requeue(ctx, key, unwritten) // buffered payloads go back to the front of the queue
//
// # Delivery
//
// Deliver never blocks on a client. If the key is not bound, its connection is gone,
// or the outbound buffer is full, the payload is queued for the key. Every retry tick
// drains each queue in order until the first failed send. Queues are bounded per key
// (WithMaxPending); when full the oldest payload is dropped.
//
// Disconnect does not unbind keys. A key pointing at a removed connection simply fails
// delivery until the client verifies again on a new connection.
package relay

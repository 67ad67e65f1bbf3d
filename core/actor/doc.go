// Package actor provides a generic single-writer actor: a goroutine that owns a value
// and is the only code allowed to touch it.
//
// Callers never access the state directly. Every operation is a closure submitted to the
// actor's command queue together with a one-shot reply channel, so concurrent callers
// observe ordinary call/response semantics while all mutation is serialized. An optional
// tick function runs on the same goroutine at a fixed interval for maintenance work such
// as retries or expiry sweeps.
//
// # Usage
//
//	type counter struct{ n int }
//
//	a := actor.New(&counter{},
//		actor.WithName[*counter]("counter"),
//		actor.WithTick(time.Minute, func(ctx context.Context, c *counter, now time.Time) {
//			c.n = 0
//		}),
//	)
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(a.Run(ctx))
//
//	n, err := actor.Call(ctx, a, func(ctx context.Context, c *counter) int {
//		c.n++
//		return c.n
//	})
//
// # Failure Semantics
//
// A panic inside a command or tick is recovered and logged, and the loop continues.
// A caller whose command panicked receives ErrPanicked. A caller whose context ends
// before the reply arrives gets ctx.Err(); the command itself is not rolled back.
// Submitting to an actor whose loop has exited returns ErrStopped, which indicates
// a lifecycle bug in the caller.
package actor

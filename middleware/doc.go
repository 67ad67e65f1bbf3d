// Package middleware provides net/http middleware for the tracker HTTP surface:
// request IDs, request logging, panic recovery and body limits.
//
//	h := middleware.Chain(mux,
//		middleware.RequestID,
//		middleware.Recover(log),
//		middleware.Logging(log),
//		middleware.BodyLimit(1<<20),
//	)
package middleware

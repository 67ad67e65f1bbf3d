// Package server runs the HTTP listener with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	eg.Go(srv.Run(ctx, handler))
//
// TLS is served directly when SERVER_TLS_CERT_FILE and SERVER_TLS_KEY_FILE are set.
package server

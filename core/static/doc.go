// Package static serves the client assets of the tracker.
//
//	resources, err := static.Dir("./resources")
//	if err != nil {
//		return err
//	}
//	mux.Handle("GET /resources/{filename...}", resources)
//	mux.Handle("GET /{id}", static.Index())
//
// Paths are cleaned before lookup and directories are reported as not found.
package static

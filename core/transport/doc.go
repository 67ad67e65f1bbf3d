// Package transport exposes the relay hub and the verification store over the network.
//
// WebSocket serves client sessions on GET /ws. A client sends its key as the first
// text frame and receives
//
//	{"type":"verified","name":"<identity>"}
//
// or {"type":"error","error":"..."} followed by a close frame. After verification every
// payload delivered to the key arrives as one text frame. Payloads still buffered when
// the connection drops are handed back to the hub and wait in the key's pending queue.
//
// DeliverHandler, IssueHandler and ValidateHandler are plain http.Handlers meant to be
// mounted on a ServeMux with method and wildcard patterns:
//
//	mux.Handle("GET /ws", transport.WebSocket(hub, transport.WithWSLogger(log)))
//	mux.Handle("POST /deliver/{key}", transport.DeliverHandler(hub, log))
//	mux.Handle("POST /verify", transport.IssueHandler(store, log))
//	mux.Handle("GET /verify/{token}", transport.ValidateHandler(store, log))
package transport

// Package tracker assembles the autowhitelist tracker service.
//
// New builds the relay hub, verification store, optional Redis ingress and the
// HTTP server from Config; Run starts them under one errgroup. Routes:
//
//	GET  /ws                      client sessions
//	POST /deliver/{key}           producer payloads over HTTP
//	POST /verify                  start email verification
//	GET  /verify/{token}          finish email verification
//	GET  /resources/{filename...} client assets
//	GET  /{id}                    index page
//	GET  /health/live, /health/ready
package tracker

// Package health provides Kubernetes-style liveness and readiness handlers.
package health

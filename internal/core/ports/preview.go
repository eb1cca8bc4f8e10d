package ports

import "time"

// Notifier is the live-reload sink of the preview server.
// Notifications are fire-and-forget and never block the caller.
//
//go:generate mockgen -source=preview.go -destination=mocks/mock_preview.go -package=mocks
type Notifier interface {
	NotifyReload()
	NotifyError(detail string)
}

// RebuildObserver records the outcome of every watch-triggered rebuild.
type RebuildObserver interface {
	ObserveRebuild(rule string, duration time.Duration, err error)
}

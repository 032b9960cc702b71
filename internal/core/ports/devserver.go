package ports

import "context"

// DevServer is the live-reload development server the watch loop notifies.
//
//go:generate mockgen -source=devserver.go -destination=mocks/mock_devserver.go -package=mocks
type DevServer interface {
	// Init starts serving dir on addr (host:port).
	Init(ctx context.Context, dir, addr string) error
	// NotifyFullReload tells connected clients to reload the page.
	NotifyFullReload()
	// NotifyPartialUpdate tells connected clients which served paths changed.
	NotifyPartialUpdate(paths []string)
	// Shutdown disconnects clients and stops the server.
	Shutdown(ctx context.Context) error
}

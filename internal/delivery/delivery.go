// Package delivery holds the transports that expose the identity usecases.
package delivery

import "context"

// Delivery is a long-running transport started by the application after fx wiring completes.
type Delivery interface {
	Serve(ctx context.Context) error
}

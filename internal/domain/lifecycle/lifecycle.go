// Package lifecycle holds timing constants shared by fx start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup pings, migrations and graceful shutdown.
const DefaultTimeout = 10 * time.Second

// Package lifecycle holds timing constants shared by fx start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single start or stop hook.
const DefaultTimeout = 10 * time.Second

// ShutdownGracePeriod is how long workers may finish in-flight jobs on stop.
const ShutdownGracePeriod = 30 * time.Second

// Package workers owns the long-lived goroutines: the download queue
// consumer and the cache sweepers, all under a panic-restarting supervisor.
package workers

import (
	"time"

	"github.com/Laky-64/gologging"
)

// restartBackoff starts small and doubles per consecutive crash, capped at a
// minute. A clean run for a while resets it.
const (
	initialBackoff = time.Second
	maxBackoff     = time.Minute
	calmThreshold  = 5 * time.Minute
)

// Supervise runs fn in a goroutine and restarts it whenever it panics or
// returns. A worker is expected to run forever; returning is treated as a
// fault, not a shutdown.
func Supervise(name string, fn func()) {
	go func() {
		backoff := initialBackoff
		for {
			started := time.Now()
			ran(name, fn)

			if time.Since(started) > calmThreshold {
				backoff = initialBackoff
			}
			gologging.WarnF("worker %s stopped, restarting in %s", name, backoff)
			time.Sleep(backoff)
			if backoff < maxBackoff {
				backoff *= 2
			}
		}
	}()
}

// ran isolates one execution of fn so a panic unwinds no further than here.
func ran(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			gologging.ErrorF("worker %s panicked: %v", name, r)
		}
	}()
	fn()
}

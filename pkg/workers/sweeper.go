package workers

import (
	"time"

	"github.com/Laky-64/gologging"

	"github.com/scdlbot/scdl/pkg/config"
	"github.com/scdlbot/scdl/pkg/core/cache"
)

// StartSweepers runs the periodic eviction loops for the persisted file-id
// cache and the in-memory session store.
func StartSweepers() {
	Supervise("cache-sweeper", func() {
		ticker := time.NewTicker(config.Conf.CacheSweepInterval)
		defer ticker.Stop()

		for range ticker.C {
			if n := cache.FileIDs.ClearExpired(); n > 0 {
				gologging.InfoF("evicted %d expired file ids (%d left)", n, cache.FileIDs.Size())
			}
			if n := cache.Sessions.Sweep(); n > 0 {
				gologging.InfoF("evicted %d stale session entries", n)
			}
		}
	})
}

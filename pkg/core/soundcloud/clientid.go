package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/Laky-64/gologging"
)

var (
	scriptsRegex  = regexp.MustCompile(`<script crossorigin src="(https://a-v2\.sndcdn\.com/assets/.+?\.js)"></script>`)
	clientIDRegex = regexp.MustCompile(`client_id[=:]"?([A-Za-z0-9]{32})`)
)

var errNoClientID = errors.New("could not obtain a working client id")

// clientIDExpiry is how long a discovered client id is trusted before rediscovery.
const clientIDExpiry = 12 * time.Hour

// probeTrackIDs are public tracks used to verify that a client id works.
var probeTrackIDs = []int64{294091744, 1180823458, 2047164164}

// fallbackClientIDs are tried in random order when homepage scraping fails.
// They rot over time; scraping is always attempted first.
var fallbackClientIDs = []string{
	"a3e059563d7fd3372b49b37f00a00bcf",
	"2t9loNQH90kzJcsFCODdigxfp325aq4z",
	"iZIs9mchVcX5lhVRyQGGAYlNPVldzAoX",
	"0t6waxGNs0ofxFhTgTsKkJfIsItcGIDp",
	"mXiDMmvLfAR7NxQI6l9dZ6X2yYiS71F9",
}

// ClientIDManager discovers, caches and rotates the SoundCloud API credential.
type ClientIDManager struct {
	mu           sync.Mutex
	id           string
	discoveredAt time.Time
}

// ClientIDs is the global credential manager.
var ClientIDs = &ClientIDManager{}

// Get returns a cached, non-expired client id, discovering a new one if needed.
func (m *ClientIDManager) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.id != "" && time.Since(m.discoveredAt) < clientIDExpiry {
		return m.id, nil
	}
	return m.discoverLocked(ctx)
}

// Refresh drops the cached credential and repeats discovery unconditionally.
// It is called at startup and whenever the API answers 401/403.
func (m *ClientIDManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.id = ""
	return m.discoverLocked(ctx)
}

// discoverLocked scrapes the homepage bundles and falls back to the static list.
// The caller must hold m.mu.
func (m *ClientIDManager) discoverLocked(ctx context.Context) (string, error) {
	if id, err := m.scrape(ctx); err == nil {
		m.id = id
		m.discoveredAt = time.Now()
		gologging.InfoF("client id: discovered %s...", id[:8])
		return id, nil
	} else {
		gologging.WarnF("client id: scraping failed: %v, trying fallbacks", err)
	}

	shuffled := make([]string, len(fallbackClientIDs))
	copy(shuffled, fallbackClientIDs)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	for _, id := range shuffled {
		if m.verify(ctx, id) {
			m.id = id
			m.discoveredAt = time.Now()
			gologging.InfoF("client id: using fallback %s...", id[:8])
			return id, nil
		}
	}

	return "", errNoClientID
}

// scrape pulls the homepage, walks its asset bundles and extracts a verified client id.
// Bundles are scanned last-first since the id usually lives in the final one.
func (m *ClientIDManager) scrape(ctx context.Context) (string, error) {
	_, body, err := fetch(ctx, "https://soundcloud.com/", nil)
	if err != nil {
		return "", err
	}

	scripts := scriptsRegex.FindAllSubmatch(body, -1)
	if len(scripts) == 0 {
		return "", errors.New("no asset scripts on homepage")
	}

	for i := len(scripts) - 1; i >= 0; i-- {
		_, js, err := fetch(ctx, string(scripts[i][1]), nil)
		if err != nil {
			continue
		}

		match := clientIDRegex.FindSubmatch(js)
		if match == nil {
			continue
		}

		id := string(match[1])
		if m.verify(ctx, id) {
			return id, nil
		}
	}

	return "", errors.New("no verifiable client id in homepage bundles")
}

// verify checks a client id against the probe tracks; any 200 validates it.
func (m *ClientIDManager) verify(ctx context.Context, id string) bool {
	for _, trackID := range probeTrackIDs {
		url := fmt.Sprintf("%s/tracks/%d?client_id=%s", apiBase, trackID, id)
		status, _, err := fetch(ctx, url, nil)
		if err == nil && status == 200 {
			return true
		}
	}
	return false
}

// extractClientID exposes the bundle regex for tests.
func extractClientID(js []byte) string {
	match := clientIDRegex.FindSubmatch(js)
	if match == nil {
		return ""
	}
	return string(match[1])
}

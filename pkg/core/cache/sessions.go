package cache

import (
	"time"
)

// InlineChoice records which user picked an inline result and what query produced it.
type InlineChoice struct {
	UserID      int64
	TrackID     int64
	Query       string
	ResultIndex int
}

// ProxyMessage points at the direct-message copy of a track sent while an
// inline message is being fulfilled.
type ProxyMessage struct {
	ChatID int64
	MsgID  int32
}

// SessionStore holds all transient per-user and per-inline-message state.
// Every map is TTL-evicted so abandoned downloads cannot grow memory without bound.
type SessionStore struct {
	choices     *Cache[InlineChoice] // inline message id -> who chose what
	proxies     *Cache[ProxyMessage] // inline message id -> DM proxy message
	errCounts   *Cache[int]          // inline message id -> consecutive failures
	spotifyURLs *Cache[string]       // derived search query -> original Spotify URL
	queries     *Cache[string]       // track id -> search query that found it
}

// Sessions is the global session store.
var Sessions = NewSessionStore(time.Hour)

// NewSessionStore creates a session store whose entries expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		choices:     NewCache[InlineChoice](ttl),
		proxies:     NewCache[ProxyMessage](ttl),
		errCounts:   NewCache[int](ttl),
		spotifyURLs: NewCache[string](ttl),
		queries:     NewCache[string](ttl),
	}
}

// SetChoice records the chosen inline result for an inline message id.
func (s *SessionStore) SetChoice(inlineMsgID string, c InlineChoice) {
	s.choices.Set(inlineMsgID, c)
}

// Choice returns the recorded choice for an inline message id.
func (s *SessionStore) Choice(inlineMsgID string) (InlineChoice, bool) {
	return s.choices.Get(inlineMsgID)
}

// SetProxy records the DM proxy message used for an inline delivery.
func (s *SessionStore) SetProxy(inlineMsgID string, p ProxyMessage) {
	s.proxies.Set(inlineMsgID, p)
}

// Proxy returns the DM proxy message for an inline message id, if any.
func (s *SessionStore) Proxy(inlineMsgID string) (ProxyMessage, bool) {
	return s.proxies.Get(inlineMsgID)
}

// DropProxy forgets the DM proxy for an inline message id.
func (s *SessionStore) DropProxy(inlineMsgID string) {
	s.proxies.Delete(inlineMsgID)
}

// BumpErrors increments the consecutive-failure counter for an inline message
// and returns the new count.
func (s *SessionStore) BumpErrors(inlineMsgID string) int {
	return s.errCounts.Update(inlineMsgID, func(n int) int { return n + 1 })
}

// ResetErrors clears the consecutive-failure counter after a success.
func (s *SessionStore) ResetErrors(inlineMsgID string) {
	s.errCounts.Delete(inlineMsgID)
}

// Errors returns the current consecutive-failure count.
func (s *SessionStore) Errors(inlineMsgID string) int {
	n, _ := s.errCounts.Get(inlineMsgID)
	return n
}

// RememberSpotifyURL associates a derived search query with the Spotify URL it came from.
func (s *SessionStore) RememberSpotifyURL(query, url string) {
	s.spotifyURLs.Set(query, url)
}

// SpotifyURL returns the Spotify URL a derived search query was built from.
func (s *SessionStore) SpotifyURL(query string) (string, bool) {
	return s.spotifyURLs.Get(query)
}

// RememberQuery associates a track id with the search query that surfaced it.
func (s *SessionStore) RememberQuery(trackID, query string) {
	s.queries.Set(trackID, query)
}

// Query returns the search query recorded for a track id.
func (s *SessionStore) Query(trackID string) (string, bool) {
	return s.queries.Get(trackID)
}

// Sweep evicts expired entries from every map and returns the total removed.
func (s *SessionStore) Sweep() int {
	return s.choices.Sweep() +
		s.proxies.Sweep() +
		s.errCounts.Sweep() +
		s.spotifyURLs.Sweep() +
		s.queries.Sweep()
}

package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/segmentio/encoding/json"
)

const apiBase = "https://api-v2.soundcloud.com"

// batchSize is the maximum number of track ids one /tracks call accepts.
const batchSize = 50

// batchDelay spaces consecutive batch calls to stay under the rate limit.
const batchDelay = 150 * time.Millisecond

// credentials supplies the API client id and rotates it when rejected.
type credentials interface {
	Get(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// Client talks to the SoundCloud private API.
// A 401/403 answer triggers one credential refresh and one retry before giving up.
type Client struct {
	ids credentials
}

// NewClient returns a Client using the given credential manager.
func NewClient(ids *ClientIDManager) *Client {
	return &Client{ids: ids}
}

// Default is the process-wide client backed by the global credential manager.
var Default = NewClient(ClientIDs)

// apiGet performs an authenticated GET and decodes the JSON answer into out.
// On 401/403 it refreshes the client id once and retries a single time.
func (c *Client) apiGet(ctx context.Context, path string, query url.Values, out any) error {
	refreshed := false
	for {
		id, err := c.ids.Get(ctx)
		if err != nil {
			return err
		}

		q := url.Values{}
		for k, vs := range query {
			q[k] = vs
		}
		q.Set("client_id", id)

		status, body, err := fetch(ctx, apiBase+path+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}

		switch {
		case status == 200:
			return json.Unmarshal(body, out)
		case status == 401 || status == 403:
			if refreshed {
				return ErrAuth
			}
			refreshed = true
			if _, err := c.ids.Refresh(ctx); err != nil {
				return err
			}
		case status == 404:
			return ErrNotFound
		default:
			return fmt.Errorf("soundcloud api: status %d for %s", status, path)
		}
	}
}

// Search queries tracks. "skip to" annotations are stripped from the query
// before sending. Any transport or API failure yields an empty slice, not an
// error, so a flaky search never breaks the inline surface.
func (c *Client) Search(ctx context.Context, query string, limit int) []Track {
	query = RemoveSkipMarkers(query)

	var page struct {
		Collection []Track `json:"collection"`
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	if err := c.apiGet(ctx, "/search/tracks", q, &page); err != nil {
		gologging.WarnF("search %q failed: %v", query, err)
		return nil
	}

	return FilterTracks(page.Collection)
}

// FilterTracks keeps only real, non-preview tracks.
func FilterTracks(tracks []Track) []Track {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Kind != "" && t.Kind != "track" {
			continue
		}
		if t.Policy == PolicySnip {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GetTrack fetches one track by id.
func (c *Client) GetTrack(ctx context.Context, id int64) (*Track, error) {
	var t Track
	if err := c.apiGet(ctx, fmt.Sprintf("/tracks/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetPlaylist fetches one playlist by id.
func (c *Client) GetPlaylist(ctx context.Context, id int64) (*Playlist, error) {
	var p Playlist
	if err := c.apiGet(ctx, fmt.Sprintf("/playlists/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetTracksBatch fetches many tracks by id, chunking into groups of 50 with a
// short delay between chunks. The API does not keep order, so results are
// re-ordered to match ids; missing tracks are skipped.
func (c *Client) GetTracksBatch(ctx context.Context, ids []int64) ([]Track, error) {
	byID := make(map[int64]Track, len(ids))

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(batchDelay):
			}
		}

		parts := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			parts = append(parts, strconv.FormatInt(id, 10))
		}

		var chunk []Track
		q := url.Values{}
		q.Set("ids", strings.Join(parts, ","))
		if err := c.apiGet(ctx, "/tracks", q, &chunk); err != nil {
			return nil, err
		}
		for _, t := range chunk {
			byID[t.ID] = t
		}
	}

	ordered := make([]Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// Resolved is the result of resolving an arbitrary SoundCloud URL.
type Resolved struct {
	Track    *Track
	Playlist *Playlist
}

// ResolveURL exchanges a SoundCloud URL for its canonical resource.
// Short on.soundcloud.com links are expanded by following their redirect first.
func (c *Client) ResolveURL(ctx context.Context, scURL string) (*Resolved, error) {
	if strings.Contains(scURL, "on.soundcloud.com") {
		expanded, err := resolveRedirect(ctx, scURL)
		if err != nil {
			return nil, fmt.Errorf("expand short link: %w", err)
		}
		scURL = expanded
	}

	var raw json.RawMessage
	q := url.Values{}
	q.Set("url", scURL)
	if err := c.apiGet(ctx, "/resolve", q, &raw); err != nil {
		return nil, err
	}

	var kind struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &kind); err != nil {
		return nil, err
	}

	switch kind.Kind {
	case "track":
		var t Track
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, err
		}
		return &Resolved{Track: &t}, nil
	case "playlist":
		var p Playlist
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &Resolved{Playlist: &p}, nil
	default:
		return nil, fmt.Errorf("%w: resolved to kind %q", ErrNotFound, kind.Kind)
	}
}

// GetStream exchanges a transcoding endpoint for a temporary signed stream URL.
// On 401/403 it refreshes the client id once and retries a single time, the
// same policy apiGet applies.
func (c *Client) GetStream(ctx context.Context, tr Transcoding, authorization string) (string, error) {
	refreshed := false
	for {
		id, err := c.ids.Get(ctx)
		if err != nil {
			return "", err
		}

		u := tr.URL + "?client_id=" + id
		if authorization != "" {
			u += "&track_authorization=" + url.QueryEscape(authorization)
		}

		status, body, err := fetch(ctx, u, nil)
		if err != nil {
			return "", err
		}

		switch {
		case status == 200:
			var s Stream
			if err := json.Unmarshal(body, &s); err != nil {
				return "", err
			}
			if s.URL == "" {
				return "", ErrNoStream
			}
			return s.URL, nil
		case status == 401 || status == 403:
			if refreshed {
				return "", ErrAuth
			}
			refreshed = true
			if _, err := c.ids.Refresh(ctx); err != nil {
				return "", err
			}
		default:
			return "", fmt.Errorf("stream exchange: status %d", status)
		}
	}
}

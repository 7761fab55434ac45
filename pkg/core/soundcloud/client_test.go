package soundcloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCreds hands out ids[cursor] and advances on Refresh.
type fakeCreds struct {
	ids       []string
	cursor    int
	refreshes int
}

func (f *fakeCreds) Get(ctx context.Context) (string, error) {
	return f.ids[f.cursor], nil
}

func (f *fakeCreds) Refresh(ctx context.Context) (string, error) {
	f.refreshes++
	if f.cursor < len(f.ids)-1 {
		f.cursor++
	}
	return f.ids[f.cursor], nil
}

func TestGetStreamRefreshesRejectedClientID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") != "fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"url":"https://cdn.example.com/signed.mp3"}`))
	}))
	defer srv.Close()

	creds := &fakeCreds{ids: []string{"stale", "fresh"}}
	c := &Client{ids: creds}

	tr := Transcoding{URL: srv.URL + "/stream", Format: Format{Protocol: ProtocolProgressive}}
	u, err := c.GetStream(context.Background(), tr, "auth-token")
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	if u != "https://cdn.example.com/signed.mp3" {
		t.Fatalf("stream url = %q", u)
	}
	if creds.refreshes != 1 {
		t.Fatalf("expected exactly one refresh, got %d", creds.refreshes)
	}
}

func TestGetStreamGivesUpAfterOneRefresh(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	creds := &fakeCreds{ids: []string{"stale", "fresh"}}
	c := &Client{ids: creds}

	tr := Transcoding{URL: srv.URL + "/stream", Format: Format{Protocol: ProtocolProgressive}}
	_, err := c.GetStream(context.Background(), tr, "")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly two exchange attempts, got %d", calls)
	}
	if creds.refreshes != 1 {
		t.Fatalf("expected exactly one refresh, got %d", creds.refreshes)
	}
}

func TestGetStreamEmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := &Client{ids: &fakeCreds{ids: []string{"id"}}}
	tr := Transcoding{URL: srv.URL + "/stream"}
	if _, err := c.GetStream(context.Background(), tr, ""); !errors.Is(err, ErrNoStream) {
		t.Fatalf("expected ErrNoStream, got %v", err)
	}
}

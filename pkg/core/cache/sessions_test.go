package cache

import (
	"testing"
	"time"
)

func TestSessionStoreChoice(t *testing.T) {
	s := NewSessionStore(time.Hour)

	if _, ok := s.Choice("k"); ok {
		t.Fatal("empty store should miss")
	}

	s.SetChoice("k", InlineChoice{UserID: 7, TrackID: 42, Query: "daft punk"})
	c, ok := s.Choice("k")
	if !ok || c.UserID != 7 || c.TrackID != 42 || c.Query != "daft punk" {
		t.Fatalf("Choice = (%+v, %v)", c, ok)
	}
}

func TestSessionStoreProxy(t *testing.T) {
	s := NewSessionStore(time.Hour)

	s.SetProxy("k", ProxyMessage{ChatID: 1, MsgID: 2})
	p, ok := s.Proxy("k")
	if !ok || p.ChatID != 1 || p.MsgID != 2 {
		t.Fatalf("Proxy = (%+v, %v)", p, ok)
	}

	s.DropProxy("k")
	if _, ok := s.Proxy("k"); ok {
		t.Fatal("dropped proxy should miss")
	}
}

func TestSessionStoreErrorCounter(t *testing.T) {
	s := NewSessionStore(time.Hour)

	if n := s.BumpErrors("k"); n != 1 {
		t.Fatalf("first bump = %d, want 1", n)
	}
	if n := s.BumpErrors("k"); n != 2 {
		t.Fatalf("second bump = %d, want 2", n)
	}
	if n := s.Errors("k"); n != 2 {
		t.Fatalf("Errors = %d, want 2", n)
	}

	s.ResetErrors("k")
	if n := s.Errors("k"); n != 0 {
		t.Fatalf("Errors after reset = %d, want 0", n)
	}
}

func TestSessionStoreSpotifyMemory(t *testing.T) {
	s := NewSessionStore(time.Hour)

	s.RememberSpotifyURL("artist song", "https://open.spotify.com/track/abc")
	url, ok := s.SpotifyURL("artist song")
	if !ok || url != "https://open.spotify.com/track/abc" {
		t.Fatalf("SpotifyURL = (%q, %v)", url, ok)
	}

	s.RememberQuery("42", "artist song")
	q, ok := s.Query("42")
	if !ok || q != "artist song" {
		t.Fatalf("Query = (%q, %v)", q, ok)
	}
}

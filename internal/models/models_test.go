package models

import (
	"testing"
	"time"
)

func TestCredential(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NeedsRefresh", func(t *testing.T) {
		tc := []struct {
			name    string
			expires time.Time
			want    bool
		}{
			{name: "expires in 30s", expires: now.Add(30 * time.Second), want: true},
			{name: "expires in exactly 60s", expires: now.Add(60 * time.Second), want: true},
			{name: "expires in 61s", expires: now.Add(61 * time.Second), want: false},
			{name: "expires in 120s", expires: now.Add(120 * time.Second), want: false},
			{name: "expired 5 minutes ago", expires: now.Add(-5 * time.Minute), want: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				c := NewCredential("user", "account", Tokens{AccessToken: "a", ExpiresAt: tt.expires}, now)
				if got := c.NeedsRefresh(now); got != tt.want {
					t.Errorf("NeedsRefresh() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		c := NewCredential("user", "account", Tokens{AccessToken: "a", ExpiresAt: now}, now)
		if err := c.Validate(); err != nil {
			t.Errorf("expected valid credential, got %v", err)
		}
		c.AccessToken = ""
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing access token")
		}
	})
}

func TestContribution(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	tracks := []ContributedTrack{{URI: "spotify:track:1"}}

	t.Run("expires exactly four weeks after creation", func(t *testing.T) {
		c := NewContribution("p", "bob", "Bob", tracks, now)
		got := c.ExpiresAt.UnixMilli() - c.CreatedAt().UnixMilli()
		if got != 2419200000 {
			t.Errorf("expected 2419200000ms between creation and expiry, got %d", got)
		}
		if c.CreatedAt().UnixMilli() != now.UnixMilli() {
			t.Errorf("expected creation at %d, got %d", now.UnixMilli(), c.CreatedAt().UnixMilli())
		}
	})

	t.Run("expires across a daylight saving change without drift", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skip("timezone data unavailable")
		}
		start := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)
		c := NewContribution("p", "bob", "Bob", tracks, start)
		if d := c.ExpiresAt.Sub(c.CreatedAt()); d != CooldownPeriod {
			t.Errorf("expected %v, got %v", CooldownPeriod, d)
		}
	})

	t.Run("IsActive", func(t *testing.T) {
		c := NewContribution("p", "bob", "Bob", tracks, now)
		if !c.IsActive(now) {
			t.Error("expected active at creation")
		}
		if !c.IsActive(c.ExpiresAt.Add(-time.Millisecond)) {
			t.Error("expected active one millisecond before expiry")
		}
		if c.IsActive(c.ExpiresAt) {
			t.Error("expected inactive at expiry")
		}
	})

	t.Run("DaysRemaining", func(t *testing.T) {
		c := NewContribution("p", "bob", "Bob", tracks, now)
		tc := []struct {
			name string
			at   time.Time
			want int
		}{
			{name: "at creation", at: c.CreatedAt(), want: 28},
			{name: "one second later", at: c.CreatedAt().Add(time.Second), want: 28},
			{name: "one day later", at: c.CreatedAt().Add(24 * time.Hour), want: 27},
			{name: "one hour before expiry", at: c.ExpiresAt.Add(-time.Hour), want: 1},
			{name: "after expiry", at: c.ExpiresAt.Add(time.Hour), want: 0},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := c.DaysRemaining(tt.at); got != tt.want {
					t.Errorf("DaysRemaining() = %d, want %d", got, tt.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := NewContribution("p", "bob", "Bob", nil, now).Validate(); err == nil {
			t.Error("expected error for empty tracks")
		}
		if err := NewContribution("p", "bob", "Bob", []ContributedTrack{{}}, now).Validate(); err == nil {
			t.Error("expected error for track without uri")
		}
		if err := NewContribution("p", "bob", "Bob", tracks, now).Validate(); err != nil {
			t.Errorf("expected valid contribution, got %v", err)
		}
	})
}

func TestPlaylist(t *testing.T) {
	p := NewPlaylist("sp1", "owner", "Alice's playlist", "", time.Now())

	if !p.Active || p.TrackCount != 0 {
		t.Errorf("new playlist should be active and empty, got active=%v count=%d", p.Active, p.TrackCount)
	}
	if !p.OwnedBy("owner") || p.OwnedBy("someone") || p.OwnedBy("") {
		t.Error("OwnedBy returned unexpected result")
	}
	p.Name = ""
	if err := p.Validate(); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestUser(t *testing.T) {
	t.Run("Name falls back to email", func(t *testing.T) {
		u := NewUser("", "bob@example.com", time.Now())
		if u.Name() != "bob" {
			t.Errorf("expected bob, got %s", u.Name())
		}
	})

	t.Run("Validate rejects malformed email", func(t *testing.T) {
		u := NewUser("Bob", "not-an-email", time.Now())
		if err := u.Validate(); err == nil {
			t.Error("expected error for malformed email")
		}
	})
}

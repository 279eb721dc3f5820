package models

import (
	"testing"
	"time"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		revoked bool
		expires time.Time
		want    bool
	}{
		{name: "fresh token", revoked: false, expires: now.Add(time.Hour), want: true},
		{name: "revoked token", revoked: true, expires: now.Add(time.Hour), want: false},
		{name: "expired token", revoked: false, expires: now.Add(-time.Minute), want: false},
		{name: "revoked and expired", revoked: true, expires: now.Add(-time.Minute), want: false},
		{name: "expires exactly now", revoked: false, expires: now, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &RefreshToken{IsRevoked: tt.revoked, ExpiresAt: tt.expires}
			if got := tok.Usable(now); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

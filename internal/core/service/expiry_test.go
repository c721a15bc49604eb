package service

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) ExpiryClock {
	return NewExpiryClockAt(func() time.Time { return t })
}

func TestExpiryClock_SessionCeiling(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := fixedClock(now)

	if got := clock.SessionCeiling(now); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected ceiling %v, got %v", now.Add(time.Hour), got)
	}
}

func TestExpiryClock_DefaultRoomTTL(t *testing.T) {
	clock := NewExpiryClock()
	if clock.DefaultRoomTTL() != 2*time.Hour {
		t.Fatalf("expected 2h default room TTL, got %v", clock.DefaultRoomTTL())
	}
}

func TestExpiryClock_Clamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := fixedClock(now)
	ceiling := now.Add(time.Hour)

	if got := clock.Clamp(now.Add(2*time.Hour), ceiling); !got.Equal(ceiling) {
		t.Fatalf("candidate beyond ceiling must clamp to ceiling, got %v", got)
	}
	if got := clock.Clamp(now.Add(30*time.Minute), ceiling); !got.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("candidate below ceiling must pass through, got %v", got)
	}
	if got := clock.Clamp(ceiling, ceiling); !got.Equal(ceiling) {
		t.Fatalf("candidate equal to ceiling must pass through, got %v", got)
	}
}

func TestExpiryClock_NowIsUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	clock := NewExpiryClockAt(func() time.Time { return time.Date(2026, 3, 1, 6, 0, 0, 0, loc) })
	if clock.Now().Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", clock.Now().Location())
	}
}

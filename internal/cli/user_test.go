package cli

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/store"
)

func TestSessionRows(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ana, gone := uuid.New(), uuid.New()
	sessions := []store.Session{
		{SessionID: "live-session-id-123", UserID: ana, StartedAt: now.Add(-time.Hour).UnixMilli(), ExpiresAt: now.Add(time.Hour).UnixMilli(), Status: "active"},
		{SessionID: "old", UserID: ana, StartedAt: now.Add(-48 * time.Hour).UnixMilli(), ExpiresAt: now.Add(-24 * time.Hour).UnixMilli(), Status: "active"},
		{SessionID: "out", UserID: gone, StartedAt: now.Add(-2 * time.Hour).UnixMilli(), ExpiresAt: now.Add(time.Hour).UnixMilli(), Status: "revoked"},
	}

	rows := sessionRows(sessions, map[uuid.UUID]string{ana: "ana@example.com"}, now)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "ana@example.com"},
		{0, 1, "live-sessio…"},
		{0, 3, "active"},
		{1, 3, "expired"},
		{2, 0, gone.String()},
		{2, 3, "revoked"},
	}
	for _, tt := range tests {
		if got := rows[tt.row][tt.col]; got != tt.want {
			t.Errorf("rows[%d][%d] = %q, want %q", tt.row, tt.col, got, tt.want)
		}
	}
}

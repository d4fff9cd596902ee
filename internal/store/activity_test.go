package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/cony/internal/domain"
)

func TestRecordActivity(t *testing.T) {
	db := testDB(t)
	u := addProfile(t, db, "a@example.com", domain.RolePatient)

	ref := uuid.New()
	if err := db.RecordActivity(u.ID, ActivitySignIn, nil); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := db.RecordActivity(u.ID, ActivityEmotionLogged, &ref); err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}

	acts, err := db.GetActivity(u.ID, 10)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("len = %d, want 2", len(acts))
	}
	if acts[0].Kind != ActivityEmotionLogged {
		t.Errorf("newest kind = %q, want %q", acts[0].Kind, ActivityEmotionLogged)
	}
	if acts[0].RefID == nil || *acts[0].RefID != ref.String() {
		t.Errorf("RefID = %v, want %s", acts[0].RefID, ref)
	}
	if acts[1].RefID != nil {
		t.Errorf("signin RefID = %v, want nil", acts[1].RefID)
	}

	p, _ := db.GetProfile(u.ID)
	if p.LastActivity == nil {
		t.Fatal("LastActivity not set")
	}
	if time.Since(*p.LastActivity) > time.Minute {
		t.Errorf("LastActivity = %v, want recent", p.LastActivity)
	}
}

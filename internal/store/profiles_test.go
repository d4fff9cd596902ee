package store

import (
	"errors"
	"testing"

	"github.com/lazypower/cony/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addProfile(t *testing.T, db *DB, email string, role domain.Role) domain.Profile {
	t.Helper()
	p, err := db.CreateProfile(domain.Profile{
		Email:        email,
		Name:         email,
		Role:         role,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateProfile %s: %v", email, err)
	}
	return p
}

func TestCreateProfile(t *testing.T) {
	db := testDB(t)

	p, err := db.CreateProfile(domain.Profile{
		Email:            "  Ana@Example.com ",
		Name:             "Ana",
		Role:             domain.RolePatient,
		PasswordHash:     "hash",
		RegistrationDate: "2024-01-10",
	})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.Email != "ana@example.com" {
		t.Errorf("Email = %q, want normalized", p.Email)
	}

	got, err := db.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Name != "Ana" || got.Role != domain.RolePatient || got.RegistrationDate != "2024-01-10" {
		t.Errorf("GetProfile = %+v", got)
	}
	if got.LastActivity != nil {
		t.Errorf("LastActivity = %v, want nil", got.LastActivity)
	}

	// Patients get a clinical record
	pt, err := db.GetPatient(p.ID)
	if err != nil {
		t.Fatalf("GetPatient: %v", err)
	}
	if pt.Status != domain.StatusActive || pt.RiskLevel != domain.RiskLow {
		t.Errorf("clinical defaults = %s/%s, want active/low", pt.Status, pt.RiskLevel)
	}
	if pt.TreatmentStartDate != "2024-01-10" {
		t.Errorf("TreatmentStartDate = %q", pt.TreatmentStartDate)
	}
}

func TestCreateProfileDuplicateEmail(t *testing.T) {
	db := testDB(t)
	addProfile(t, db, "a@example.com", domain.RolePatient)

	_, err := db.CreateProfile(domain.Profile{Email: "A@example.com", Name: "dup", Role: domain.RolePatient})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetProfileByEmail("ghost@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetProfileByEmail err = %v, want ErrNotFound", err)
	}
}

func TestGetProfileByEmail(t *testing.T) {
	db := testDB(t)
	p := addProfile(t, db, "a@example.com", domain.RoleAdmin)

	got, err := db.GetProfileByEmail("A@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetProfileByEmail: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID = %s, want %s", got.ID, p.ID)
	}
}

func TestListProfilesByRole(t *testing.T) {
	db := testDB(t)
	addProfile(t, db, "c@example.com", domain.RolePatient)
	addProfile(t, db, "a@example.com", domain.RolePsychologist)
	addProfile(t, db, "b@example.com", domain.RolePatient)

	all, err := db.ListProfiles(nil)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Email != "a@example.com" {
		t.Errorf("first = %q, want ordered by name", all[0].Email)
	}

	role := domain.RolePatient
	patients, err := db.ListProfiles(&role)
	if err != nil {
		t.Fatalf("ListProfiles(patient): %v", err)
	}
	if len(patients) != 2 {
		t.Errorf("patients = %d, want 2", len(patients))
	}
}

func TestSetRole(t *testing.T) {
	db := testDB(t)
	p := addProfile(t, db, "a@example.com", domain.RolePatient)

	if err := db.SetRole(p.ID, domain.RolePsychologist); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	got, _ := db.GetProfile(p.ID)
	if got.Role != domain.RolePsychologist {
		t.Errorf("Role = %s, want psychologist", got.Role)
	}

	psychs, err := db.ListPsychologists()
	if err != nil {
		t.Fatalf("ListPsychologists: %v", err)
	}
	if len(psychs) != 1 || psychs[0].ID != p.ID {
		t.Errorf("ListPsychologists = %+v, want the promoted user", psychs)
	}

	// No longer listed as a patient
	if _, err := db.GetPatient(p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetPatient err = %v, want ErrNotFound", err)
	}
}

func TestSetRoleMissing(t *testing.T) {
	db := testDB(t)
	p := addProfile(t, db, "a@example.com", domain.RolePatient)
	if err := db.DeleteProfile(p.ID); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	if err := db.SetRole(p.ID, domain.RoleAdmin); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

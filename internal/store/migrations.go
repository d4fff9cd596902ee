package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "profiles: accounts and roles",
		SQL: `
CREATE TABLE profiles (
    id                TEXT PRIMARY KEY,
    email             TEXT NOT NULL UNIQUE,
    name              TEXT NOT NULL,
    role              TEXT NOT NULL DEFAULT 'patient' CHECK (role IN ('patient', 'psychologist', 'admin')),
    password_hash     TEXT NOT NULL,
    registration_date TEXT NOT NULL,
    last_activity     INTEGER,
    created_at        INTEGER NOT NULL
);

CREATE INDEX idx_profiles_role     ON profiles(role);
CREATE INDEX idx_profiles_activity ON profiles(last_activity DESC);
`,
	},
	{
		Version:     2,
		Description: "sessions: sign-in sessions backing access tokens",
		SQL: `
CREATE TABLE sessions (
    id             INTEGER PRIMARY KEY,
    session_id     TEXT NOT NULL UNIQUE,
    user_id        TEXT NOT NULL,
    started_at     INTEGER NOT NULL,
    expires_at     INTEGER NOT NULL,
    ended_at       INTEGER,
    status         TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'revoked')),

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_sessions_user       ON sessions(user_id);
CREATE INDEX idx_sessions_started_at ON sessions(started_at DESC);
`,
	},
	{
		Version:     3,
		Description: "emotions: emotion check-ins",
		SQL: `
CREATE TABLE emotions (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL,
    emotion     TEXT NOT NULL,
    intensity   INTEGER NOT NULL CHECK (intensity BETWEEN 1 AND 10),
    date        TEXT NOT NULL,
    note        TEXT,
    triggers    TEXT NOT NULL DEFAULT '[]',
    created_at  INTEGER NOT NULL,

    FOREIGN KEY (owner_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_emotions_owner ON emotions(owner_id, created_at DESC);
CREATE INDEX idx_emotions_date  ON emotions(owner_id, date);
`,
	},
	{
		Version:     4,
		Description: "thought_records: CBT thought records",
		SQL: `
CREATE TABLE thought_records (
    id                  TEXT PRIMARY KEY,
    owner_id            TEXT NOT NULL,
    date                TEXT NOT NULL,
    situation           TEXT NOT NULL,
    automatic_thought   TEXT NOT NULL,
    emotion             TEXT NOT NULL,
    pre_intensity       INTEGER NOT NULL CHECK (pre_intensity BETWEEN 1 AND 10),
    evidence            TEXT NOT NULL DEFAULT '',
    alternative_thought TEXT NOT NULL DEFAULT '',
    post_intensity      INTEGER NOT NULL CHECK (post_intensity BETWEEN 1 AND 10),
    created_at          INTEGER NOT NULL,

    FOREIGN KEY (owner_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_thoughts_owner ON thought_records(owner_id, created_at DESC);
`,
	},
	{
		Version:     5,
		Description: "patients and psychologists: clinical records",
		SQL: `
CREATE TABLE psychologists (
    user_id         TEXT PRIMARY KEY,
    license         TEXT NOT NULL DEFAULT '',
    specializations TEXT NOT NULL DEFAULT '[]',
    max_patients    INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE TABLE patients (
    user_id              TEXT PRIMARY KEY,
    psychologist_id      TEXT,
    status               TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'completed')),
    treatment_start_date TEXT NOT NULL,
    notes                TEXT NOT NULL DEFAULT '',
    risk_level           TEXT NOT NULL DEFAULT 'low' CHECK (risk_level IN ('low', 'medium', 'high')),

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE,
    FOREIGN KEY (psychologist_id) REFERENCES psychologists(user_id) ON DELETE SET NULL
);

CREATE INDEX idx_patients_psychologist ON patients(psychologist_id);
CREATE INDEX idx_patients_status       ON patients(status);
`,
	},
	{
		Version:     6,
		Description: "activity: per-user activity log",
		SQL: `
CREATE TABLE activity (
    id         INTEGER PRIMARY KEY,
    user_id    TEXT NOT NULL,
    kind       TEXT NOT NULL,
    ref_id     TEXT,
    created_at INTEGER NOT NULL,

    FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX idx_activity_user    ON activity(user_id, created_at DESC);
CREATE INDEX idx_activity_created ON activity(created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}

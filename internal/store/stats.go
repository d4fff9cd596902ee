package store

import (
	"fmt"
	"time"

	"github.com/lazypower/cony/internal/analytics"
	"github.com/lazypower/cony/internal/domain"
)

// Totals gathers the platform-wide counts behind the admin overview.
// Accounts with activity at or after activeSince count as active.
func (db *DB) Totals(activeSince time.Time) (analytics.Totals, error) {
	t := analytics.Totals{RiskByLevel: map[domain.RiskLevel]int{}}

	err := db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(role = 'psychologist'), 0),
			COALESCE(SUM(role = 'patient'), 0),
			COALESCE(SUM(last_activity >= ?), 0)
		FROM profiles
	`, activeSince.UnixMilli()).Scan(&t.Users, &t.Psychologists, &t.Patients, &t.ActiveUsers)
	if err != nil {
		return t, fmt.Errorf("count profiles: %w", err)
	}

	err = db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(intensity), 0) FROM emotions`).Scan(&t.Emotions, &t.IntensitySum)
	if err != nil {
		return t, fmt.Errorf("count emotions: %w", err)
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM thought_records`).Scan(&t.Thoughts); err != nil {
		return t, fmt.Errorf("count thought records: %w", err)
	}

	rows, err := db.Query(`
		SELECT c.risk_level, COUNT(*)
		FROM patients c JOIN profiles p ON p.id = c.user_id
		WHERE p.role = 'patient'
		GROUP BY c.risk_level
	`)
	if err != nil {
		return t, fmt.Errorf("count risk levels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			level string
			n     int
		)
		if err := rows.Scan(&level, &n); err != nil {
			return t, fmt.Errorf("scan risk level: %w", err)
		}
		t.RiskByLevel[domain.RiskLevel(level)] = n
	}
	return t, rows.Err()
}

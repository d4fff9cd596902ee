package analytics

import "github.com/lazypower/cony/internal/domain"

// Totals are the raw platform-wide counts an admin view is built from.
type Totals struct {
	Users         int
	Psychologists int
	Patients      int
	ActiveUsers   int
	Emotions      int
	Thoughts      int
	IntensitySum  int
	RiskByLevel   map[domain.RiskLevel]int
}

// RiskDistribution splits patients by risk level.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// AdminStats is the platform overview.
type AdminStats struct {
	TotalUsers         int                `json:"total_users"`
	TotalPsychologists int                `json:"total_psychologists"`
	TotalPatients      int                `json:"total_patients"`
	ActiveUsers        int                `json:"active_users"`
	ActiveRatio        float64            `json:"active_ratio"`
	TotalEmotions      int                `json:"total_emotions"`
	TotalThoughts      int                `json:"total_thoughts"`
	AverageMood        float64            `json:"average_mood"`
	RiskDistribution   RiskDistribution   `json:"risk_distribution"`
	RiskShare          map[string]float64 `json:"risk_share"`
}

// ratio returns part/whole, or 0 when whole is 0.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// BuildAdminStats derives the overview from platform totals.
func BuildAdminStats(t Totals) AdminStats {
	risk := RiskDistribution{
		Low:    t.RiskByLevel[domain.RiskLow],
		Medium: t.RiskByLevel[domain.RiskMedium],
		High:   t.RiskByLevel[domain.RiskHigh],
	}
	return AdminStats{
		TotalUsers:         t.Users,
		TotalPsychologists: t.Psychologists,
		TotalPatients:      t.Patients,
		ActiveUsers:        t.ActiveUsers,
		ActiveRatio:        ratio(t.ActiveUsers, t.Users),
		TotalEmotions:      t.Emotions,
		TotalThoughts:      t.Thoughts,
		AverageMood:        mean(t.IntensitySum, t.Emotions),
		RiskDistribution:   risk,
		RiskShare: map[string]float64{
			string(domain.RiskLow):    ratio(risk.Low, t.Patients),
			string(domain.RiskMedium): ratio(risk.Medium, t.Patients),
			string(domain.RiskHigh):   ratio(risk.High, t.Patients),
		},
	}
}

// RosterStats summarizes a psychologist's patient list.
type RosterStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	HighRisk  int `json:"high_risk"`
	Completed int `json:"completed"`
}

// BuildRosterStats counts patients by status and risk.
func BuildRosterStats(patients []domain.Patient) RosterStats {
	rs := RosterStats{Total: len(patients)}
	for _, p := range patients {
		switch p.Status {
		case domain.StatusActive:
			rs.Active++
		case domain.StatusCompleted:
			rs.Completed++
		}
		if p.RiskLevel == domain.RiskHigh {
			rs.HighRisk++
		}
	}
	return rs
}

package journal

import (
	"strings"
	"unicode/utf8"

	"github.com/lazypower/cony/internal/domain"
)

const (
	maxNoteLength    = 1000
	maxTextLength    = 2000
	maxEmotionLength = 50
)

// EmotionInput holds the fields of a new emotion check-in.
type EmotionInput struct {
	Emotion   string   `json:"emotion"`
	Intensity int      `json:"intensity"`
	Date      string   `json:"date,omitempty"`
	Note      string   `json:"note,omitempty"`
	Triggers  []string `json:"triggers,omitempty"`
}

// normalize lowercases labels so "Work" and " work" validate as the same
// trigger.
func (i *EmotionInput) normalize() {
	i.Emotion = strings.ToLower(strings.TrimSpace(i.Emotion))
	i.Note = strings.TrimSpace(i.Note)
	for n, t := range i.Triggers {
		i.Triggers[n] = strings.ToLower(strings.TrimSpace(t))
	}
}

// Validate checks labels and formats. Intensity is clamped rather than rejected.
func (i EmotionInput) Validate() error {
	var errs []domain.FieldError

	if i.Emotion == "" {
		errs = append(errs, domain.FieldError{Field: "emotion", Message: "required"})
	} else if !domain.Emotion(i.Emotion).Valid() {
		errs = append(errs, domain.FieldError{Field: "emotion", Message: "unknown emotion"})
	}

	if i.Date != "" {
		if _, err := domain.ParseDay(i.Date); err != nil {
			errs = append(errs, domain.FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
		}
	}

	if utf8.RuneCountInString(i.Note) > maxNoteLength {
		errs = append(errs, domain.FieldError{Field: "note", Message: "too long"})
	}

	for _, t := range i.Triggers {
		if !domain.Trigger(t).Valid() {
			errs = append(errs, domain.FieldError{Field: "triggers", Message: "unknown trigger " + t})
			break
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ThoughtInput holds the four steps of a CBT thought record.
type ThoughtInput struct {
	Date               string `json:"date,omitempty"`
	Situation          string `json:"situation"`
	AutomaticThought   string `json:"automatic_thought"`
	Emotion            string `json:"emotion"`
	PreIntensity       int    `json:"pre_intensity"`
	Evidence           string `json:"evidence"`
	AlternativeThought string `json:"alternative_thought"`
	PostIntensity      int    `json:"post_intensity"`
}

func (i *ThoughtInput) normalize() {
	i.Situation = strings.TrimSpace(i.Situation)
	i.AutomaticThought = strings.TrimSpace(i.AutomaticThought)
	i.Emotion = strings.ToLower(strings.TrimSpace(i.Emotion))
	i.Evidence = strings.TrimSpace(i.Evidence)
	i.AlternativeThought = strings.TrimSpace(i.AlternativeThought)
}

// Validate requires every step to be filled in.
func (i ThoughtInput) Validate() error {
	var errs []domain.FieldError

	if i.Date != "" {
		if _, err := domain.ParseDay(i.Date); err != nil {
			errs = append(errs, domain.FieldError{Field: "date", Message: "must be YYYY-MM-DD"})
		}
	}

	text := []struct {
		field, value string
	}{
		{"situation", i.Situation},
		{"automatic_thought", i.AutomaticThought},
		{"evidence", i.Evidence},
		{"alternative_thought", i.AlternativeThought},
	}
	for _, f := range text {
		switch {
		case f.value == "":
			errs = append(errs, domain.FieldError{Field: f.field, Message: "required"})
		case utf8.RuneCountInString(f.value) > maxTextLength:
			errs = append(errs, domain.FieldError{Field: f.field, Message: "too long"})
		}
	}

	if i.Emotion == "" {
		errs = append(errs, domain.FieldError{Field: "emotion", Message: "required"})
	} else if utf8.RuneCountInString(i.Emotion) > maxEmotionLength {
		errs = append(errs, domain.FieldError{Field: "emotion", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

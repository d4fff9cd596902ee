package domain

import (
	"time"

	"github.com/google/uuid"
)

// Intensity bounds for emotion ratings.
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// ClampIntensity pins v into [MinIntensity, MaxIntensity].
func ClampIntensity(v int) int {
	if v < MinIntensity {
		return MinIntensity
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return v
}

// EmotionEntry is a single emotion check-in.
type EmotionEntry struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Emotion   Emotion   `json:"emotion"`
	Intensity int       `json:"intensity"`
	Date      Day       `json:"date"`
	Note      string    `json:"note,omitempty"`
	Triggers  []Trigger `json:"triggers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ThoughtRecord is one completed CBT thought-record exercise.
type ThoughtRecord struct {
	ID                 uuid.UUID `json:"id"`
	OwnerID            uuid.UUID `json:"owner_id"`
	Date               Day       `json:"date"`
	Situation          string    `json:"situation"`
	AutomaticThought   string    `json:"automatic_thought"`
	Emotion            string    `json:"emotion"`
	PreIntensity       int       `json:"pre_intensity"`
	Evidence           string    `json:"evidence"`
	AlternativeThought string    `json:"alternative_thought"`
	PostIntensity      int       `json:"post_intensity"`
	CreatedAt          time.Time `json:"created_at"`
}

// Improvement is the drop in intensity the exercise produced. Negative when
// the exercise made things worse.
func (t ThoughtRecord) Improvement() int {
	return t.PreIntensity - t.PostIntensity
}

// Emotion is a label from the fixed check-in vocabulary.
type Emotion string

const (
	EmotionHappiness   Emotion = "happiness"
	EmotionSadness     Emotion = "sadness"
	EmotionAnxiety     Emotion = "anxiety"
	EmotionAnger       Emotion = "anger"
	EmotionFear        Emotion = "fear"
	EmotionCalm        Emotion = "calm"
	EmotionStress      Emotion = "stress"
	EmotionHope        Emotion = "hope"
	EmotionFrustration Emotion = "frustration"
	EmotionGratitude   Emotion = "gratitude"
	EmotionLoneliness  Emotion = "loneliness"
	EmotionEnergy      Emotion = "energy"
)

// Emotions is the check-in vocabulary in picker order.
var Emotions = []Emotion{
	EmotionHappiness, EmotionSadness, EmotionAnxiety, EmotionAnger,
	EmotionFear, EmotionCalm, EmotionStress, EmotionHope,
	EmotionFrustration, EmotionGratitude, EmotionLoneliness, EmotionEnergy,
}

// Valid reports whether e belongs to the vocabulary.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// Trigger is a tag from the fixed trigger vocabulary.
type Trigger string

const (
	TriggerWork          Trigger = "work"
	TriggerFamily        Trigger = "family"
	TriggerRelationships Trigger = "relationships"
	TriggerHealth        Trigger = "health"
	TriggerMoney         Trigger = "money"
	TriggerSocial        Trigger = "social"
	TriggerStudies       Trigger = "studies"
	TriggerFuture        Trigger = "future"
	TriggerPast          Trigger = "past"
	TriggerChanges       Trigger = "changes"
	TriggerDecisions     Trigger = "decisions"
	TriggerOther         Trigger = "other"
)

// Triggers is the trigger vocabulary in picker order.
var Triggers = []Trigger{
	TriggerWork, TriggerFamily, TriggerRelationships, TriggerHealth,
	TriggerMoney, TriggerSocial, TriggerStudies, TriggerFuture,
	TriggerPast, TriggerChanges, TriggerDecisions, TriggerOther,
}

// Valid reports whether t belongs to the vocabulary.
func (t Trigger) Valid() bool {
	for _, known := range Triggers {
		if t == known {
			return true
		}
	}
	return false
}

package models

import "time"

type Cadence string

const (
	CadenceDaily  Cadence = "DAILY"
	CadenceWeekly Cadence = "WEEKLY"
)

// Valid reports whether c is one of the known cadences.
func (c Cadence) Valid() bool {
	return c == CadenceDaily || c == CadenceWeekly
}

// Habit represents a recurring practice to track. (OwnerID, Name) is unique
// per user; Streak is a cached counter maintained only by the check-in engine.
type Habit struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Cadence   Cadence   `json:"cadence"`
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitCompletion is a single check-in record. PeriodKey is the canonical
// string form of the completion's period for its habit's cadence; the store
// keeps (HabitID, PeriodKey) unique so one period can hold at most one
// completion even under concurrent check-ins.
type HabitCompletion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	PeriodKey string    `json:"period_key"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

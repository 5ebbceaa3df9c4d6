package domain

import "time"

type HostelPhase string

const (
	PhaseClosed HostelPhase = "CLOSED"
	PhaseAOpen  HostelPhase = "PHASE_A"
	PhaseBOpen  HostelPhase = "PHASE_B"
)

// phaseTransitions is the only legal phase machine:
// CLOSED -> PHASE_A, PHASE_A -> {PHASE_B, CLOSED}, PHASE_B -> CLOSED.
var phaseTransitions = map[HostelPhase][]HostelPhase{
	PhaseClosed: {PhaseAOpen},
	PhaseAOpen:  {PhaseBOpen, PhaseClosed},
	PhaseBOpen:  {PhaseClosed},
}

// CanTransition reports whether moving from to next is allowed.
func (p HostelPhase) CanTransition(next HostelPhase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known phases.
func (p HostelPhase) Valid() bool {
	switch p {
	case PhaseClosed, PhaseAOpen, PhaseBOpen:
		return true
	}
	return false
}

// Hostel holds the single global allotment switch. It is read fresh inside
// every gated transaction, never cached across requests, and written only
// through a compare-and-swap update keyed on the current phase.
type Hostel struct {
	ID              int64       `json:"id" gorm:"primaryKey"`
	Name            string      `json:"name"`
	AllotmentStatus HostelPhase `json:"allotment_status"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

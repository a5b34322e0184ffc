package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidKind = errors.New("invalid kind")
	ErrInvalidSlot = errors.New("invalid slot")
)

// Kind is the daily action a reminder is about.
type Kind string

const (
	KindConsumption Kind = "consumo"
	KindMood        Kind = "mood"
)

// Slot is the time-of-day bucket of a mood entry.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
)

const (
	DefaultKind = KindConsumption
	DefaultSlot = SlotMorning

	// DateLayout is the format of the fecha columns.
	DateLayout = "2006-01-02"
)

func (k Kind) Valid() bool {
	return k == KindConsumption || k == KindMood
}

func (s Slot) Valid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}

// Request identifies which reminder an invocation sends. Slot is empty
// unless Kind is KindMood.
type Request struct {
	Kind Kind
	Slot Slot
}

// ParseRequest resolves raw invocation parameters, applying defaults.
// The slot is only consulted for mood reminders.
func ParseRequest(kind, slot string) (Request, error) {
	if kind == "" {
		kind = string(DefaultKind)
	}
	req := Request{Kind: Kind(kind)}
	if !req.Kind.Valid() {
		return Request{}, ErrInvalidKind
	}
	if req.Kind != KindMood {
		return req, nil
	}

	if slot == "" {
		slot = string(DefaultSlot)
	}
	req.Slot = Slot(slot)
	if !req.Slot.Valid() {
		return Request{}, ErrInvalidSlot
	}
	return req, nil
}

// Validate checks a request built without ParseRequest.
func (r Request) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if r.Kind == KindMood && !r.Slot.Valid() {
		return ErrInvalidSlot
	}
	return nil
}

func (r Request) String() string {
	if r.Kind == KindMood {
		return string(r.Kind) + ":" + string(r.Slot)
	}
	return string(r.Kind)
}

// OutcomeStatus is what happened to one candidate user.
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

type Outcome struct {
	UserID    string        `json:"user_id"`
	Status    OutcomeStatus `json:"status"`
	MessageID string        `json:"message_id,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Summary reports one dispatch invocation.
type Summary struct {
	RunID      string    `json:"run_id"`
	Kind       Kind      `json:"kind"`
	Slot       Slot      `json:"slot,omitempty"`
	Date       string    `json:"date"`
	StartedAt  time.Time `json:"started_at"`
	Candidates int       `json:"candidates"`
	Sent       int       `json:"sent"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Tally recomputes the counters from Outcomes.
func (s *Summary) Tally() {
	s.Candidates = len(s.Outcomes)
	s.Sent, s.Skipped, s.Failed = 0, 0, 0
	for _, o := range s.Outcomes {
		switch o.Status {
		case OutcomeSent:
			s.Sent++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		}
	}
}

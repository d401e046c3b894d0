package booking

import (
	"strings"
	"time"

	"nahio/backend/internal/schema"
	"nahio/backend/internal/utils"
)

// MaxNotesLen caps free-text notes and cancellation reasons.
const MaxNotesLen = 500

// Booking is a scout's visit request to an institution.
type Booking struct {
	ID            string    `firestore:"id" json:"id"`
	ScoutID       string    `firestore:"scoutId" json:"scoutId"`
	InstitutionID string    `firestore:"institutionId" json:"institutionId"`
	VisitDate     time.Time `firestore:"visitDate" json:"visitDate"`
	TimeSlot      string    `firestore:"timeSlot" json:"timeSlot"` // "HH:MM"
	Status        string    `firestore:"status" json:"status"`
	Notes         string    `firestore:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt" json:"updatedAt"`

	// Read-time joins, never stored.
	Scout       *PartySnapshot `firestore:"-" json:"scout,omitempty"`
	Institution *PartySnapshot `firestore:"-" json:"institution,omitempty"`
}

// PartySnapshot is the denormalized public view of a counterpart.
type PartySnapshot struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type CreateInput struct {
	ScoutID       string    `json:"scoutId"`
	InstitutionID string    `json:"institutionId"`
	VisitDate     time.Time `json:"visitDate"`
	TimeSlot      string    `json:"timeSlot"`
	Notes         string    `json:"notes,omitempty"`
}

func (in *CreateInput) Trim() {
	in.ScoutID = strings.TrimSpace(in.ScoutID)
	in.InstitutionID = strings.TrimSpace(in.InstitutionID)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	in.Notes = utils.TrimMax(in.Notes, MaxNotesLen)
}

// StatsSummary aggregates a user's bookings by status. Computed by
// iterating the full result set; the store has no server-side counts.
type StatsSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// allowedFrom lists which current statuses may move to a target status.
// cancelled and completed are terminal.
var allowedFrom = map[string][]string{
	schema.BookingConfirmed: {schema.BookingPending},
	schema.BookingCompleted: {schema.BookingConfirmed},
	schema.BookingCancelled: {schema.BookingPending, schema.BookingConfirmed},
}

func CanTransition(from, to string) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Active reports whether a status holds its time slot.
func Active(status string) bool {
	return status == schema.BookingPending || status == schema.BookingConfirmed
}

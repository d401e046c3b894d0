package invitation

import (
	"strings"
	"time"

	"nahio/backend/internal/schema"
)

// Invitation connects an institution and a scout, optionally about a
// specific athlete. Either side can be the sender.
type Invitation struct {
	ID            string      `firestore:"id" json:"id"`
	SenderID      string      `firestore:"senderId" json:"senderId"`
	RecipientID   string      `firestore:"recipientId" json:"recipientId"`
	SenderRole    schema.Role `firestore:"senderRole" json:"senderRole"`
	RecipientRole schema.Role `firestore:"recipientRole" json:"recipientRole"`
	AthleteID     string      `firestore:"athleteId,omitempty" json:"athleteId,omitempty"`
	Message       string      `firestore:"message,omitempty" json:"message,omitempty"`
	Status        string      `firestore:"status" json:"status"`
	CreatedAt     time.Time   `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time   `firestore:"updatedAt" json:"updatedAt"`

	// Read-time joins, never stored. Missing references stay nil/empty.
	Sender      *PartySnapshot `firestore:"-" json:"sender,omitempty"`
	Recipient   *PartySnapshot `firestore:"-" json:"recipient,omitempty"`
	AthleteName string         `firestore:"-" json:"athleteName,omitempty"`
}

type PartySnapshot struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// PartyListing is one row in the eligible-counterpart pickers.
type PartyListing struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
	City     string `json:"city,omitempty"`
}

type SendInput struct {
	SenderID      string      `json:"senderId"`
	RecipientID   string      `json:"recipientId"`
	SenderRole    schema.Role `json:"senderRole"`
	RecipientRole schema.Role `json:"recipientRole"`
	AthleteID     string      `json:"athleteId,omitempty"`
	Message       string      `json:"message,omitempty"`
}

func (in *SendInput) Trim() {
	in.SenderID = strings.TrimSpace(in.SenderID)
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	in.AthleteID = strings.TrimSpace(in.AthleteID)
	in.Message = strings.TrimSpace(in.Message)
}

// StatsSide counts one direction of a user's invitations.
type StatsSide struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Pending  int `json:"pending"`
}

type StatsSummary struct {
	Sent     StatsSide `json:"sent"`
	Received StatsSide `json:"received"`
}

// partyRole reports whether a role can stand on either end of an
// invitation. Guardians manage athletes but never exchange invitations.
func partyRole(r schema.Role) bool {
	return r == schema.RoleScout || r == schema.RoleInstitution
}

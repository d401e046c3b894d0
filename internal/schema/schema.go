package schema

import "time"

// Firestore collection names.
const (
	ColUsers         = "users"
	ColScouts        = "scouts"
	ColInstitutions  = "institutions"
	ColGuardians     = "guardians"
	ColAthletes      = "athletes"
	ColBookings      = "bookings"
	ColInvitations   = "invitations"
	ColNotifications = "notifications"

	// Slot lock documents for booking uniqueness (one per
	// institution/date/timeSlot while a pending or confirmed
	// booking holds the slot).
	ColBookingSlots = "bookingSlots"
)

// Role is a user account type. Immutable after registration.
type Role string

const (
	RoleScout       Role = "scout"
	RoleInstitution Role = "institution"
	RoleGuardian    Role = "guardian"
)

// profileCollections is the closed role -> profile collection table.
// Adding a role means adding exactly one entry here.
var profileCollections = map[Role]string{
	RoleScout:       ColScouts,
	RoleInstitution: ColInstitutions,
	RoleGuardian:    ColGuardians,
}

// ProfileCollection returns the profile collection for a role,
// or ok=false for an unknown role.
func ProfileCollection(r Role) (string, bool) {
	col, ok := profileCollections[r]
	return col, ok
}

func ValidRole(r Role) bool {
	_, ok := profileCollections[r]
	return ok
}

// Invitation statuses. Transitions are forward-only:
// sent -> accepted | declined.
const (
	InvitationSent     = "sent"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// Booking statuses. pending -> confirmed -> completed,
// pending/confirmed -> cancelled; cancelled and completed are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

// Notification types.
const (
	NotifBooking    = "booking"
	NotifInvitation = "invitation"
	NotifSystem     = "system"
)

// Modalities an institution can offer.
var Modalities = []string{
	"Futebol de Campo",
	"Futsal",
	"Futebol Society",
	"Futebol Feminino",
}

// Address is the shared address sub-document shape.
type Address struct {
	CEP        string `firestore:"cep" json:"cep"`
	Street     string `firestore:"street" json:"street"`
	Number     string `firestore:"number" json:"number"`
	Complement string `firestore:"complement,omitempty" json:"complement,omitempty"`
	District   string `firestore:"district,omitempty" json:"district,omitempty"`
	City       string `firestore:"city" json:"city"`
	State      string `firestore:"state" json:"state"`
}

// Document factories. These are the shape templates for new records;
// profile documents stay loosely typed maps so partial merges behave
// the same as the store's own merge semantics.

func NewScoutProfile(name, phone string) map[string]interface{} {
	return map[string]interface{}{
		"name":               name,
		"phone":              phone,
		"photoUrl":           "",
		"academicBackground": "",
		"experience":         "",
		"address":            emptyAddress(),
	}
}

func NewInstitutionProfile(schoolName, taxID, phone string) map[string]interface{} {
	return map[string]interface{}{
		"schoolName": schoolName,
		"taxId":      taxID,
		"phone":      phone,
		"photoUrl":   "",
		"bannerUrl":  "",
		"modalities": []string{},
		"address":    emptyAddress(),
	}
}

func NewGuardianProfile(name, phone, institutionID string) map[string]interface{} {
	return map[string]interface{}{
		"name":          name,
		"phone":         phone,
		"photoUrl":      "",
		"institutionId": institutionID,
	}
}

func NewProfile(role Role, name, phone string) map[string]interface{} {
	switch role {
	case RoleInstitution:
		return NewInstitutionProfile(name, "", phone)
	case RoleGuardian:
		return NewGuardianProfile(name, phone, "")
	default:
		return NewScoutProfile(name, phone)
	}
}

func emptyAddress() map[string]interface{} {
	return map[string]interface{}{
		"cep":        "",
		"street":     "",
		"number":     "",
		"complement": "",
		"district":   "",
		"city":       "",
		"state":      "",
	}
}

// SlotLockID builds the composite bookingSlots document id for an
// institution, a visit date (date part only) and a time slot. The time
// slot participates verbatim: "14:00" and "14:00 " are different slots
// on purpose, matching the store's string-equality conflict check.
func SlotLockID(institutionID string, visitDate time.Time, timeSlot string) string {
	return institutionID + "_" + visitDate.UTC().Format("2006-01-02") + "_" + timeSlot
}

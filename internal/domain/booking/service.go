package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"nahio/backend/internal/schema"
	"nahio/backend/internal/utils"
)

// Repo is the store port for bookings.
type Repo interface {
	CreateWithSlotLock(ctx context.Context, b Booking) (*Booking, error)
	Get(ctx context.Context, id string) (*Booking, error)
	Transition(ctx context.Context, id, to string, notes *string) error
	Delete(ctx context.Context, id string) error
	ListByParty(ctx context.Context, field, id string) ([]Booking, error)
	ListActiveAt(ctx context.Context, institutionID string, dayStart, dayEnd time.Time, timeSlot string) ([]Booking, error)
	ListUpcoming(ctx context.Context, field, id string, from, to time.Time) ([]Booking, error)
	Profiles(ctx context.Context, role schema.Role, ids []string) (map[string]PartySnapshot, error)
}

// Notifier lets booking events fan out to the notifications collection.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, notifType string) error
}

type Service struct {
	repo     Repo
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// SetNotifier wires the notifications service; nil keeps events silent.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	in.Trim()
	if in.ScoutID == "" || in.InstitutionID == "" {
		return nil, fmt.Errorf("%w: scoutId and institutionId are required", ErrBadRequest)
	}
	if in.VisitDate.IsZero() {
		return nil, fmt.Errorf("%w: visitDate is required", ErrBadRequest)
	}
	if !utils.IsTimeSlot(in.TimeSlot) {
		return nil, fmt.Errorf("%w: timeSlot must be HH:MM", ErrBadRequest)
	}

	now := s.now()
	b := Booking{
		ScoutID:       in.ScoutID,
		InstitutionID: in.InstitutionID,
		VisitDate:     in.VisitDate.UTC(),
		TimeSlot:      in.TimeSlot,
		Status:        schema.BookingPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	out, err := s.repo.CreateWithSlotLock(ctx, b)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, out.InstitutionID, "New visit request",
		fmt.Sprintf("A scout requested a visit on %s at %s.", out.VisitDate.Format("2006-01-02"), out.TimeSlot))
	return out, nil
}

// CheckAvailability reports whether the institution's slot is free on
// that day. excludeID skips one booking so edit flows don't collide
// with themselves. The check is advisory; Create still holds the
// authoritative slot lock.
func (s *Service) CheckAvailability(ctx context.Context, institutionID string, date time.Time, timeSlot, excludeID string) (bool, error) {
	if institutionID == "" {
		return false, fmt.Errorf("%w: institutionId is required", ErrBadRequest)
	}
	if date.IsZero() || timeSlot == "" {
		return false, fmt.Errorf("%w: date and timeSlot are required", ErrBadRequest)
	}

	conflicts, err := s.repo.ListActiveAt(ctx, institutionID, utils.StartOfDay(date), utils.EndOfDay(date), timeSlot)
	if err != nil {
		return false, err
	}

	remaining := 0
	for _, b := range conflicts {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		remaining++
	}
	return remaining == 0, nil
}

// Confirm: institution accepts the visit.
func (s *Service) Confirm(ctx context.Context, id, actorUID string) error {
	b, err := s.authorize(ctx, id, actorUID, false)
	if err != nil {
		return err
	}
	if err := s.repo.Transition(ctx, id, schema.BookingConfirmed, nil); err != nil {
		return err
	}
	s.notify(ctx, b.ScoutID, "Visit confirmed",
		fmt.Sprintf("Your visit on %s at %s was confirmed.", b.VisitDate.Format("2006-01-02"), b.TimeSlot))
	return nil
}

// Complete: institution marks the visit as done.
func (s *Service) Complete(ctx context.Context, id, actorUID string) error {
	b, err := s.authorize(ctx, id, actorUID, false)
	if err != nil {
		return err
	}
	if err := s.repo.Transition(ctx, id, schema.BookingCompleted, nil); err != nil {
		return err
	}
	s.notify(ctx, b.ScoutID, "Visit completed",
		fmt.Sprintf("Your visit on %s was marked as completed.", b.VisitDate.Format("2006-01-02")))
	return nil
}

// Cancel: either party may cancel; an optional reason lands in notes.
func (s *Service) Cancel(ctx context.Context, id, actorUID, reason string) error {
	b, err := s.authorize(ctx, id, actorUID, true)
	if err != nil {
		return err
	}

	reason = utils.TrimMax(reason, MaxNotesLen)
	var notes *string
	if reason != "" {
		notes = &reason
	}
	if err := s.repo.Transition(ctx, id, schema.BookingCancelled, notes); err != nil {
		return err
	}

	counterpart := b.InstitutionID
	if actorUID == b.InstitutionID {
		counterpart = b.ScoutID
	}
	s.notify(ctx, counterpart, "Visit cancelled",
		fmt.Sprintf("The visit on %s at %s was cancelled.", b.VisitDate.Format("2006-01-02"), b.TimeSlot))
	return nil
}

func (s *Service) Delete(ctx context.Context, id, actorUID string) error {
	if _, err := s.authorize(ctx, id, actorUID, true); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (*Booking, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	joined, err := s.join(ctx, []Booking{*b})
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

func (s *Service) ListByScout(ctx context.Context, scoutID string) ([]Booking, error) {
	return s.listJoined(ctx, "scoutId", scoutID)
}

func (s *Service) ListByInstitution(ctx context.Context, institutionID string) ([]Booking, error) {
	return s.listJoined(ctx, "institutionId", institutionID)
}

func (s *Service) listJoined(ctx context.Context, field, id string) ([]Booking, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	out, err := s.repo.ListByParty(ctx, field, id)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, out)
}

// ListUpcoming returns the next 7 days of active bookings for the user.
func (s *Service) ListUpcoming(ctx context.Context, userID string, role schema.Role) ([]Booking, error) {
	field, err := partyField(role)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out, err := s.repo.ListUpcoming(ctx, field, userID, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	return s.join(ctx, out)
}

// Stats aggregates the user's bookings by status, client-side.
func (s *Service) Stats(ctx context.Context, userID string, role schema.Role) (*StatsSummary, error) {
	field, err := partyField(role)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListByParty(ctx, field, userID)
	if err != nil {
		return nil, err
	}

	stats := &StatsSummary{}
	for _, b := range all {
		stats.Total++
		switch b.Status {
		case schema.BookingPending:
			stats.Pending++
		case schema.BookingConfirmed:
			stats.Confirmed++
		case schema.BookingCompleted:
			stats.Completed++
		case schema.BookingCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// join attaches counterpart snapshots via two batch fetches. A missing
// referenced profile leaves the field nil instead of failing the list.
func (s *Service) join(ctx context.Context, bookings []Booking) ([]Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	scoutIDs := make([]string, 0, len(bookings))
	instIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		scoutIDs = append(scoutIDs, b.ScoutID)
		instIDs = append(instIDs, b.InstitutionID)
	}

	scouts, err := s.repo.Profiles(ctx, schema.RoleScout, scoutIDs)
	if err != nil {
		return nil, err
	}
	institutions, err := s.repo.Profiles(ctx, schema.RoleInstitution, instIDs)
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		if snap, ok := scouts[bookings[i].ScoutID]; ok {
			bookings[i].Scout = &snap
		}
		if snap, ok := institutions[bookings[i].InstitutionID]; ok {
			bookings[i].Institution = &snap
		}
	}
	return bookings, nil
}

// authorize loads the booking and checks the actor is allowed to act on
// it: the institution always, the scout only where scoutToo is set.
func (s *Service) authorize(ctx context.Context, id, actorUID string, scoutToo bool) (*Booking, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorUID == b.InstitutionID || (scoutToo && actorUID == b.ScoutID) {
		return b, nil
	}
	return nil, fmt.Errorf("%w: not a party to this booking", ErrUnauthorized)
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message, schema.NotifBooking); err != nil {
		log.Printf("warn: failed to write booking notification for %s: %v", userID, err)
	}
}

func partyField(role schema.Role) (string, error) {
	switch role {
	case schema.RoleScout:
		return "scoutId", nil
	case schema.RoleInstitution:
		return "institutionId", nil
	default:
		return "", fmt.Errorf("%w: role %q has no bookings", ErrBadRequest, role)
	}
}

package booking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"nahio/backend/internal/schema"
)

type fakeRepo struct {
	bookings map[string]*Booking
	locks    map[string]string
	profiles map[schema.Role]map[string]PartySnapshot
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: map[string]*Booking{},
		locks:    map[string]string{},
		profiles: map[schema.Role]map[string]PartySnapshot{
			schema.RoleScout:       {},
			schema.RoleInstitution: {},
		},
	}
}

func (r *fakeRepo) CreateWithSlotLock(_ context.Context, b Booking) (*Booking, error) {
	key := schema.SlotLockID(b.InstitutionID, b.VisitDate, b.TimeSlot)
	if _, held := r.locks[key]; held {
		return nil, fmt.Errorf("%w: %s", ErrSlotTaken, b.TimeSlot)
	}

	r.nextID++
	b.ID = fmt.Sprintf("bkg-%d", r.nextID)
	cp := b
	r.bookings[b.ID] = &cp
	r.locks[key] = b.ID
	return &b, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) Transition(_ context.Context, id, to string, notes *string) error {
	b, ok := r.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	if !CanTransition(b.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	b.Status = to
	if notes != nil {
		b.Notes = *notes
	}
	if !Active(to) {
		delete(r.locks, schema.SlotLockID(b.InstitutionID, b.VisitDate, b.TimeSlot))
	}
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if b, ok := r.bookings[id]; ok && Active(b.Status) {
		delete(r.locks, schema.SlotLockID(b.InstitutionID, b.VisitDate, b.TimeSlot))
	}
	delete(r.bookings, id)
	return nil
}

func (r *fakeRepo) ListByParty(_ context.Context, field, id string) ([]Booking, error) {
	out := []Booking{}
	for _, b := range r.bookings {
		if (field == "scoutId" && b.ScoutID == id) || (field == "institutionId" && b.InstitutionID == id) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListActiveAt(_ context.Context, institutionID string, dayStart, dayEnd time.Time, timeSlot string) ([]Booking, error) {
	out := []Booking{}
	for _, b := range r.bookings {
		if b.InstitutionID != institutionID || !Active(b.Status) {
			continue
		}
		if b.VisitDate.Before(dayStart) || b.VisitDate.After(dayEnd) {
			continue
		}
		if b.TimeSlot != timeSlot {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRepo) ListUpcoming(_ context.Context, field, id string, from, to time.Time) ([]Booking, error) {
	out := []Booking{}
	for _, b := range r.bookings {
		if (field == "scoutId" && b.ScoutID != id) || (field == "institutionId" && b.InstitutionID != id) {
			continue
		}
		if !Active(b.Status) || b.VisitDate.Before(from) || b.VisitDate.After(to) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeRepo) Profiles(_ context.Context, role schema.Role, ids []string) (map[string]PartySnapshot, error) {
	out := map[string]PartySnapshot{}
	for _, id := range ids {
		if snap, ok := r.profiles[role][id]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

type fakeNotifier struct {
	sent []string // "userID:title"
}

func (n *fakeNotifier) Notify(_ context.Context, userID, title, _, _ string) error {
	n.sent = append(n.sent, userID+":"+title)
	return nil
}

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }

	n := &fakeNotifier{}
	svc.SetNotifier(n)
	return svc, repo, n
}

func createTestBooking(t *testing.T, svc *Service) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateInput{
		ScoutID:       "scout-1",
		InstitutionID: "inst-1",
		VisitDate:     testNow.AddDate(0, 0, 2),
		TimeSlot:      "14:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return b
}

func TestCreateHoldsSlot(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	if b.Status != schema.BookingPending {
		t.Fatalf("want pending, got %s", b.Status)
	}
	if len(n.sent) != 1 || n.sent[0] != "inst-1:New visit request" {
		t.Fatalf("institution not notified: %v", n.sent)
	}

	// Same institution, date and slot: taken, even for another scout.
	_, err := svc.Create(ctx, CreateInput{
		ScoutID:       "scout-2",
		InstitutionID: "inst-1",
		VisitDate:     b.VisitDate,
		TimeSlot:      "14:00",
	})
	if !IsErrSlotTaken(err) {
		t.Fatalf("want ErrSlotTaken, got %v", err)
	}

	// A different slot on the same day is free.
	if _, err := svc.Create(ctx, CreateInput{
		ScoutID:       "scout-2",
		InstitutionID: "inst-1",
		VisitDate:     b.VisitDate,
		TimeSlot:      "15:00",
	}); err != nil {
		t.Fatalf("different slot should be free: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []CreateInput{
		{InstitutionID: "inst-1", VisitDate: testNow, TimeSlot: "14:00"},
		{ScoutID: "scout-1", VisitDate: testNow, TimeSlot: "14:00"},
		{ScoutID: "scout-1", InstitutionID: "inst-1", TimeSlot: "14:00"},
		{ScoutID: "scout-1", InstitutionID: "inst-1", VisitDate: testNow, TimeSlot: "2pm"},
		{ScoutID: "scout-1", InstitutionID: "inst-1", VisitDate: testNow, TimeSlot: "14:00:00"},
	}
	for i, in := range cases {
		if _, err := svc.Create(ctx, in); !IsErrBadRequest(err) {
			t.Fatalf("case %d: want ErrBadRequest, got %v", i, err)
		}
	}
}

func TestAvailabilityFollowsSlotLifecycle(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	free, err := svc.CheckAvailability(ctx, "inst-1", b.VisitDate, "14:00", "")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if free {
		t.Fatalf("slot should be taken")
	}

	// Excluding the holding booking itself reports free (edit flow).
	free, err = svc.CheckAvailability(ctx, "inst-1", b.VisitDate, "14:00", b.ID)
	if err != nil {
		t.Fatalf("CheckAvailability exclude: %v", err)
	}
	if !free {
		t.Fatalf("slot should be free when holder excluded")
	}

	// Cancelling releases the slot.
	if err := svc.Cancel(ctx, b.ID, "scout-1", "can't make it"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	free, err = svc.CheckAvailability(ctx, "inst-1", b.VisitDate, "14:00", "")
	if err != nil {
		t.Fatalf("CheckAvailability after cancel: %v", err)
	}
	if !free {
		t.Fatalf("slot should be free after cancel")
	}

	// And a new booking for the slot succeeds.
	if _, err := svc.Create(ctx, CreateInput{
		ScoutID:       "scout-2",
		InstitutionID: "inst-1",
		VisitDate:     b.VisitDate,
		TimeSlot:      "14:00",
	}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestTransitionsAreForwardOnly(t *testing.T) {
	svc, repo, n := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	// Completing a pending booking skips confirmation.
	if err := svc.Complete(ctx, b.ID, "inst-1"); !IsErrInvalidTransition(err) {
		t.Fatalf("complete pending: want ErrInvalidTransition, got %v", err)
	}

	if err := svc.Confirm(ctx, b.ID, "inst-1"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if repo.bookings[b.ID].Status != schema.BookingConfirmed {
		t.Fatalf("not confirmed")
	}

	if err := svc.Complete(ctx, b.ID, "inst-1"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// Terminal states reject everything.
	if err := svc.Cancel(ctx, b.ID, "scout-1", ""); !IsErrInvalidTransition(err) {
		t.Fatalf("cancel completed: want ErrInvalidTransition, got %v", err)
	}
	if err := svc.Confirm(ctx, b.ID, "inst-1"); !IsErrInvalidTransition(err) {
		t.Fatalf("confirm completed: want ErrInvalidTransition, got %v", err)
	}

	wantNotes := []string{
		"inst-1:New visit request",
		"scout-1:Visit confirmed",
		"scout-1:Visit completed",
	}
	if len(n.sent) != len(wantNotes) {
		t.Fatalf("notifications: got %v want %v", n.sent, wantNotes)
	}
	for i := range wantNotes {
		if n.sent[i] != wantNotes[i] {
			t.Fatalf("notification %d: got %q want %q", i, n.sent[i], wantNotes[i])
		}
	}
}

func TestTransitionAuthorization(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	// Only the institution confirms or completes.
	if err := svc.Confirm(ctx, b.ID, "scout-1"); !IsErrUnauthorized(err) {
		t.Fatalf("scout confirm: want ErrUnauthorized, got %v", err)
	}
	if err := svc.Confirm(ctx, b.ID, "someone-else"); !IsErrUnauthorized(err) {
		t.Fatalf("stranger confirm: want ErrUnauthorized, got %v", err)
	}

	// Either party cancels; strangers do not.
	if err := svc.Cancel(ctx, b.ID, "someone-else", ""); !IsErrUnauthorized(err) {
		t.Fatalf("stranger cancel: want ErrUnauthorized, got %v", err)
	}
	if err := svc.Cancel(ctx, b.ID, "inst-1", "closed that day"); err != nil {
		t.Fatalf("institution cancel: %v", err)
	}
}

func TestCancelStoresReasonAndNotifiesCounterpart(t *testing.T) {
	svc, repo, n := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	if err := svc.Cancel(ctx, b.ID, "inst-1", "field maintenance"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if repo.bookings[b.ID].Notes != "field maintenance" {
		t.Fatalf("reason not stored: %q", repo.bookings[b.ID].Notes)
	}
	last := n.sent[len(n.sent)-1]
	if last != "scout-1:Visit cancelled" {
		t.Fatalf("counterpart not notified: %q", last)
	}

	b2 := createTestBooking(t, svc)
	long := strings.Repeat("x", MaxNotesLen+100)
	if err := svc.Cancel(ctx, b2.ID, "inst-1", long); err != nil {
		t.Fatalf("Cancel long reason: %v", err)
	}
	if got := len(repo.bookings[b2.ID].Notes); got != MaxNotesLen {
		t.Fatalf("reason not capped: %d chars", got)
	}
}

func TestListUpcomingWindow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mk := func(days int, slot string) {
		t.Helper()
		if _, err := svc.Create(ctx, CreateInput{
			ScoutID:       "scout-1",
			InstitutionID: "inst-1",
			VisitDate:     testNow.AddDate(0, 0, days),
			TimeSlot:      slot,
		}); err != nil {
			t.Fatalf("create +%dd: %v", days, err)
		}
	}
	mk(1, "09:00")
	mk(6, "10:00")
	mk(10, "11:00") // outside the 7-day window

	out, err := svc.ListUpcoming(ctx, "scout-1", schema.RoleScout)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("want 2 upcoming, got %d", len(out))
	}
}

func TestStatsAggregation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	b1 := createTestBooking(t, svc)
	if err := svc.Confirm(ctx, b1.ID, "inst-1"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	b2, err := svc.Create(ctx, CreateInput{
		ScoutID:       "scout-1",
		InstitutionID: "inst-1",
		VisitDate:     testNow.AddDate(0, 0, 3),
		TimeSlot:      "14:00",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if err := svc.Cancel(ctx, b2.ID, "scout-1", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stats, err := svc.Stats(ctx, "scout-1", schema.RoleScout)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := StatsSummary{Total: 2, Confirmed: 1, Cancelled: 1}
	if *stats != want {
		t.Fatalf("stats: got %+v want %+v", *stats, want)
	}

	if _, err := svc.Stats(ctx, "scout-1", schema.RoleGuardian); !IsErrBadRequest(err) {
		t.Fatalf("guardian stats: want ErrBadRequest, got %v", err)
	}
}

func TestJoinTolerantOfMissingProfiles(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	b := createTestBooking(t, svc)

	repo.profiles[schema.RoleScout]["scout-1"] = PartySnapshot{Name: "Ana"}
	// No institution profile on purpose.

	got, err := svc.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Scout == nil || got.Scout.Name != "Ana" {
		t.Fatalf("scout snapshot missing: %+v", got.Scout)
	}
	if got.Institution != nil {
		t.Fatalf("missing institution should stay nil, got %+v", got.Institution)
	}
}

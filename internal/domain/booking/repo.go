package booking

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nahio/backend/internal/schema"
)

type FirestoreRepo struct {
	fs *firestore.Client
}

func NewFirestoreRepo(fs *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{fs: fs}
}

func (r *FirestoreRepo) col() *firestore.CollectionRef {
	return r.fs.Collection(schema.ColBookings)
}

func (r *FirestoreRepo) slotRef(b Booking) *firestore.DocumentRef {
	return r.fs.Collection(schema.ColBookingSlots).
		Doc(schema.SlotLockID(b.InstitutionID, b.VisitDate, b.TimeSlot))
}

// CreateWithSlotLock writes the booking and reserves its slot lock
// document in one transaction. Two concurrent creates for the same
// (institution, date, slot) cannot both commit; the loser gets
// ErrSlotTaken.
func (r *FirestoreRepo) CreateWithSlotLock(ctx context.Context, b Booking) (*Booking, error) {
	ref := r.col().NewDoc()
	b.ID = ref.ID
	slotRef := r.slotRef(b)

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(slotRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return fmt.Errorf("failed to read slot lock: %w", err)
		}
		if snap != nil && snap.Exists() {
			return fmt.Errorf("%w: %s %s", ErrSlotTaken, b.VisitDate.Format("2006-01-02"), b.TimeSlot)
		}

		if err := tx.Create(slotRef, map[string]interface{}{
			"bookingId":     b.ID,
			"institutionId": b.InstitutionID,
			"createdAt":     b.CreatedAt,
		}); err != nil {
			return fmt.Errorf("failed to reserve slot: %w", err)
		}
		return tx.Create(ref, b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *FirestoreRepo) Get(ctx context.Context, id string) (*Booking, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}

	var b Booking
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to parse booking: %w", err)
	}
	b.ID = doc.Ref.ID
	return &b, nil
}

// Transition moves a booking to a new status, re-validating the current
// status inside the transaction, and releases the slot lock when the
// booking leaves its active states.
func (r *FirestoreRepo) Transition(ctx context.Context, id, to string, notes *string) error {
	ref := r.col().Doc(id)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: booking not found", ErrNotFound)
		}

		var b Booking
		if err := doc.DataTo(&b); err != nil {
			return fmt.Errorf("failed to parse booking: %w", err)
		}
		if !CanTransition(b.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
		}

		updates := map[string]interface{}{
			"status":    to,
			"updatedAt": firestore.ServerTimestamp,
		}
		if notes != nil {
			updates["notes"] = *notes
		}
		if err := tx.Set(ref, updates, firestore.MergeAll); err != nil {
			return err
		}

		if Active(b.Status) && !Active(to) {
			b.ID = doc.Ref.ID
			if err := tx.Delete(r.slotRef(b)); err != nil {
				return fmt.Errorf("failed to release slot: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the booking and, when it still holds a slot, its lock.
func (r *FirestoreRepo) Delete(ctx context.Context, id string) error {
	b, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	batch := r.fs.Batch()
	batch.Delete(r.col().Doc(id))
	if Active(b.Status) {
		batch.Delete(r.slotRef(*b))
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// ListByParty lists bookings where field ("scoutId" / "institutionId")
// equals id, newest visit first.
func (r *FirestoreRepo) ListByParty(ctx context.Context, field, id string) ([]Booking, error) {
	q := r.col().
		Where(field, "==", id).
		OrderBy("visitDate", firestore.Desc)
	return r.collect(q.Documents(ctx))
}

// ListActiveAt returns pending/confirmed bookings for the institution
// whose visit date falls inside [dayStart, dayEnd] and whose timeSlot
// matches exactly (string equality).
func (r *FirestoreRepo) ListActiveAt(ctx context.Context, institutionID string, dayStart, dayEnd time.Time, timeSlot string) ([]Booking, error) {
	q := r.col().
		Where("institutionId", "==", institutionID).
		Where("visitDate", ">=", dayStart).
		Where("visitDate", "<=", dayEnd).
		Where("timeSlot", "==", timeSlot).
		Where("status", "in", []string{schema.BookingPending, schema.BookingConfirmed})
	return r.collect(q.Documents(ctx))
}

// ListUpcoming returns the party's pending/confirmed bookings inside
// [from, to], soonest first.
func (r *FirestoreRepo) ListUpcoming(ctx context.Context, field, id string, from, to time.Time) ([]Booking, error) {
	q := r.col().
		Where(field, "==", id).
		Where("visitDate", ">=", from).
		Where("visitDate", "<=", to).
		Where("status", "in", []string{schema.BookingPending, schema.BookingConfirmed}).
		OrderBy("visitDate", firestore.Asc)
	return r.collect(q.Documents(ctx))
}

func (r *FirestoreRepo) collect(it *firestore.DocumentIterator) ([]Booking, error) {
	defer it.Stop()

	out := []Booking{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate bookings: %w", err)
		}

		var b Booking
		if err := doc.DataTo(&b); err != nil {
			continue
		}
		b.ID = doc.Ref.ID
		out = append(out, b)
	}
	return out, nil
}

// Profiles batch-fetches public counterpart snapshots for the given
// role. Missing documents are simply absent from the result map.
func (r *FirestoreRepo) Profiles(ctx context.Context, role schema.Role, ids []string) (map[string]PartySnapshot, error) {
	col, ok := schema.ProfileCollection(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range dedupe(ids) {
		refs = append(refs, r.fs.Collection(col).Doc(id))
	}
	if len(refs) == 0 {
		return map[string]PartySnapshot{}, nil
	}

	docs, err := r.fs.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-fetch %s profiles: %w", role, err)
	}

	out := make(map[string]PartySnapshot, len(docs))
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		data := doc.Data()
		snap := PartySnapshot{}
		if v, ok := data["name"].(string); ok {
			snap.Name = v
		} else if v, ok := data["schoolName"].(string); ok {
			snap.Name = v
		}
		if v, ok := data["photoUrl"].(string); ok {
			snap.PhotoURL = v
		}
		out[doc.Ref.ID] = snap
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

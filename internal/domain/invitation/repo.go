package invitation

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"nahio/backend/internal/schema"
)

type FirestoreRepo struct {
	fs *firestore.Client
}

func NewFirestoreRepo(fs *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{fs: fs}
}

func (r *FirestoreRepo) col() *firestore.CollectionRef {
	return r.fs.Collection(schema.ColInvitations)
}

func (r *FirestoreRepo) openQuery(senderID, recipientID, athleteID string) firestore.Query {
	q := r.col().
		Where("senderId", "==", senderID).
		Where("recipientId", "==", recipientID).
		Where("status", "==", schema.InvitationSent)
	if athleteID != "" {
		q = q.Where("athleteId", "==", athleteID)
	}
	return q
}

// SendUnique creates the invitation after re-running the duplicate
// check inside a transaction, so two concurrent sends for the same
// (sender, recipient, athlete) triple cannot both land.
func (r *FirestoreRepo) SendUnique(ctx context.Context, inv Invitation) (*Invitation, error) {
	ref := r.col().NewDoc()
	inv.ID = ref.ID

	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		it := tx.Documents(r.openQuery(inv.SenderID, inv.RecipientID, inv.AthleteID).Limit(1))
		defer it.Stop()

		if _, err := it.Next(); err != iterator.Done {
			if err != nil {
				return fmt.Errorf("failed to check for duplicate invitation: %w", err)
			}
			return fmt.Errorf("%w: to %s", ErrDuplicate, inv.RecipientID)
		}
		return tx.Create(ref, inv)
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindOpen returns the id of an unresolved invitation for the triple,
// or "" when none exists.
func (r *FirestoreRepo) FindOpen(ctx context.Context, senderID, recipientID, athleteID string) (string, error) {
	it := r.openQuery(senderID, recipientID, athleteID).Limit(1).Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check for existing invitation: %w", err)
	}
	return doc.Ref.ID, nil
}

func (r *FirestoreRepo) Get(ctx context.Context, id string) (*Invitation, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: invitation not found", ErrNotFound)
	}

	var inv Invitation
	if err := doc.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse invitation: %w", err)
	}
	inv.ID = doc.Ref.ID
	return &inv, nil
}

// Transition resolves an invitation. The sent-status check runs inside
// the transaction; accepted/declined are terminal.
func (r *FirestoreRepo) Transition(ctx context.Context, id, to string) error {
	ref := r.col().Doc(id)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: invitation not found", ErrNotFound)
		}

		var inv Invitation
		if err := doc.DataTo(&inv); err != nil {
			return fmt.Errorf("failed to parse invitation: %w", err)
		}
		if inv.Status != schema.InvitationSent {
			return fmt.Errorf("%w: status is %s", ErrInvalidTransition, inv.Status)
		}

		return tx.Set(ref, map[string]interface{}{
			"status":    to,
			"updatedAt": firestore.ServerTimestamp,
		}, firestore.MergeAll)
	})
}

func (r *FirestoreRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// ListByParty lists invitations where field ("senderId"/"recipientId")
// equals id, newest first.
func (r *FirestoreRepo) ListByParty(ctx context.Context, field, id string) ([]Invitation, error) {
	q := r.col().
		Where(field, "==", id).
		OrderBy("createdAt", firestore.Desc)
	return r.collect(q.Documents(ctx))
}

// ListUnread lists a recipient's still-unresolved invitations.
func (r *FirestoreRepo) ListUnread(ctx context.Context, recipientID string) ([]Invitation, error) {
	q := r.col().
		Where("recipientId", "==", recipientID).
		Where("status", "==", schema.InvitationSent).
		OrderBy("createdAt", firestore.Desc)
	return r.collect(q.Documents(ctx))
}

func (r *FirestoreRepo) collect(it *firestore.DocumentIterator) ([]Invitation, error) {
	defer it.Stop()

	out := []Invitation{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate invitations: %w", err)
		}

		var inv Invitation
		if err := doc.DataTo(&inv); err != nil {
			continue
		}
		inv.ID = doc.Ref.ID
		out = append(out, inv)
	}
	return out, nil
}

// Profiles batch-fetches public snapshots for one role's profile
// collection. Missing documents are absent from the map.
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

// AthleteNames batch-fetches athlete display names.
func (r *FirestoreRepo) AthleteNames(ctx context.Context, ids []string) (map[string]string, error) {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range dedupe(ids) {
		refs = append(refs, r.fs.Collection(schema.ColAthletes).Doc(id))
	}
	if len(refs) == 0 {
		return map[string]string{}, nil
	}

	docs, err := r.fs.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-fetch athletes: %w", err)
	}

	out := make(map[string]string, len(docs))
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		if v, ok := doc.Data()["name"].(string); ok {
			out[doc.Ref.ID] = v
		}
	}
	return out, nil
}

// ListParties lists a role's whole profile collection ordered by the
// given display-name field, for the invitation pickers.
func (r *FirestoreRepo) ListParties(ctx context.Context, role schema.Role, nameField string) ([]PartyListing, error) {
	col, ok := schema.ProfileCollection(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}

	it := r.fs.Collection(col).OrderBy(nameField, firestore.Asc).Documents(ctx)
	defer it.Stop()

	out := []PartyListing{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate %s: %w", col, err)
		}

		data := doc.Data()
		row := PartyListing{ID: doc.Ref.ID}
		if v, ok := data[nameField].(string); ok {
			row.Name = v
		}
		if v, ok := data["photoUrl"].(string); ok {
			row.PhotoURL = v
		}
		if addr, ok := data["address"].(map[string]interface{}); ok {
			if v, ok := addr["city"].(string); ok {
				row.City = v
			}
		}
		out = append(out, row)
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

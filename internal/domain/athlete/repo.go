package athlete

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"nahio/backend/internal/schema"
)

// FirestoreRepo stores athletes in the athletes collection.
type FirestoreRepo struct {
	fs *firestore.Client
}

func NewFirestoreRepo(fs *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{fs: fs}
}

func (r *FirestoreRepo) col() *firestore.CollectionRef {
	return r.fs.Collection(schema.ColAthletes)
}

func (r *FirestoreRepo) Create(ctx context.Context, a Athlete) (*Athlete, error) {
	ref := r.col().NewDoc()
	a.ID = ref.ID
	if _, err := ref.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create athlete: %w", err)
	}
	return &a, nil
}

func (r *FirestoreRepo) Get(ctx context.Context, id string) (*Athlete, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: athlete not found", ErrNotFound)
	}

	var a Athlete
	if err := doc.DataTo(&a); err != nil {
		return nil, fmt.Errorf("failed to parse athlete: %w", err)
	}
	a.ID = doc.Ref.ID
	return &a, nil
}

func (r *FirestoreRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if _, err := r.col().Doc(id).Set(ctx, updates, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update athlete: %w", err)
	}
	return nil
}

func (r *FirestoreRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete athlete: %w", err)
	}
	return nil
}

func (r *FirestoreRepo) ListByInstitution(ctx context.Context, institutionID string) ([]Athlete, error) {
	q := r.col().
		Where("institutionId", "==", institutionID).
		OrderBy("createdAt", firestore.Desc)
	return r.collect(q.Documents(ctx))
}

func (r *FirestoreRepo) List(ctx context.Context, f Filters) ([]Athlete, error) {
	q := r.col().Query
	if f.Position != "" {
		q = q.Where("position", "==", f.Position)
	}
	// The range filter needs both bounds, same as the mobile client sends.
	if f.AgeMin != nil && f.AgeMax != nil {
		q = q.Where("age", ">=", *f.AgeMin).Where("age", "<=", *f.AgeMax)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	return r.collect(q.Documents(ctx))
}

// MutateMedia runs fn against a freshly read media object inside a
// transaction, so concurrent favorite toggles and deletes cannot
// overwrite each other's writes.
func (r *FirestoreRepo) MutateMedia(ctx context.Context, id string, fn func(m *Media) error) error {
	ref := r.col().Doc(id)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return fmt.Errorf("%w: athlete not found", ErrNotFound)
		}

		var a Athlete
		if err := doc.DataTo(&a); err != nil {
			return fmt.Errorf("failed to parse athlete: %w", err)
		}
		if err := fn(&a.Media); err != nil {
			return err
		}

		return tx.Set(ref, map[string]interface{}{
			"media":     a.Media,
			"updatedAt": firestore.ServerTimestamp,
		}, firestore.MergeAll)
	})
}

func (r *FirestoreRepo) collect(it *firestore.DocumentIterator) ([]Athlete, error) {
	defer it.Stop()

	out := []Athlete{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate athletes: %w", err)
		}

		var a Athlete
		if err := doc.DataTo(&a); err != nil {
			continue
		}
		a.ID = doc.Ref.ID
		out = append(out, a)
	}
	return out, nil
}

package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
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

// CreateAccount writes the users doc and the role profile doc in one
// batch so a half-registered account never lands.
func (r *FirestoreRepo) CreateAccount(ctx context.Context, acc Account, profile map[string]interface{}) error {
	col, ok := schema.ProfileCollection(acc.Role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrBadRequest, acc.Role)
	}

	batch := r.fs.Batch()
	batch.Create(r.fs.Collection(schema.ColUsers).Doc(acc.UID), acc)
	batch.Create(r.fs.Collection(col).Doc(acc.UID), profile)

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *FirestoreRepo) GetAccount(ctx context.Context, uid string) (*Account, error) {
	doc, err := r.fs.Collection(schema.ColUsers).Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}

	var acc Account
	if err := doc.DataTo(&acc); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	if acc.UID == "" {
		acc.UID = doc.Ref.ID
	}
	return &acc, nil
}

// GetProfile returns the role profile document, or nil when it does not
// exist. A missing profile is not an error here.
func (r *FirestoreRepo) GetProfile(ctx context.Context, role schema.Role, uid string) (map[string]interface{}, error) {
	col, ok := schema.ProfileCollection(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}

	doc, err := r.fs.Collection(col).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return doc.Data(), nil
}

// MergeProfile merges a patch into the role profile doc and stamps the
// users doc.
func (r *FirestoreRepo) MergeProfile(ctx context.Context, role schema.Role, uid string, patch map[string]interface{}) error {
	col, ok := schema.ProfileCollection(role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}

	batch := r.fs.Batch()
	batch.Set(r.fs.Collection(col).Doc(uid), patch, firestore.MergeAll)
	batch.Set(r.fs.Collection(schema.ColUsers).Doc(uid), map[string]interface{}{
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// DeleteAccount removes the users doc and the profile doc, for rolling
// back a registration that failed partway.
func (r *FirestoreRepo) DeleteAccount(ctx context.Context, role schema.Role, uid string) error {
	col, ok := schema.ProfileCollection(role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}

	batch := r.fs.Batch()
	batch.Delete(r.fs.Collection(schema.ColUsers).Doc(uid))
	batch.Delete(r.fs.Collection(col).Doc(uid))

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

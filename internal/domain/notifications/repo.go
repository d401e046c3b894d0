package notifications

import (
	"context"
	"fmt"
	"time"

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
	return r.fs.Collection(schema.ColNotifications)
}

func (r *FirestoreRepo) Create(ctx context.Context, n Notification) (*Notification, error) {
	ref := r.col().NewDoc()
	n.ID = ref.ID
	if _, err := ref.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

func (r *FirestoreRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	q := r.col().Where("userId", "==", userID)
	if unreadOnly {
		q = q.Where("isRead", "==", false)
	}
	q = q.OrderBy("createdAt", firestore.Desc).Limit(limit)

	it := q.Documents(ctx)
	defer it.Stop()

	out := []Notification{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}

		var n Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.Ref.ID
		out = append(out, n)
	}
	return out, nil
}

func (r *FirestoreRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	it := r.col().
		Where("userId", "==", userID).
		Where("isRead", "==", false).
		Documents(ctx)
	defer it.Stop()

	count := int64(0)
	for {
		_, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count unread notifications: %w", err)
		}
		count++
	}
	return count, nil
}

func (r *FirestoreRepo) MarkRead(ctx context.Context, userID, notificationID string, readAt time.Time) error {
	doc, err := r.col().Doc(notificationID).Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}
	if v, _ := doc.Data()["userId"].(string); v != userID {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}

	if _, err := doc.Ref.Set(ctx, map[string]interface{}{
		"isRead": true,
		"readAt": readAt,
	}, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the user, committing in
// chunks under the store's 500-write batch limit.
func (r *FirestoreRepo) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error) {
	it := r.col().
		Where("userId", "==", userID).
		Where("isRead", "==", false).
		Documents(ctx)
	defer it.Stop()

	batch := r.fs.Batch()
	count := 0
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to list unread notifications: %w", err)
		}

		batch.Set(doc.Ref, map[string]interface{}{
			"isRead": true,
			"readAt": readAt,
		}, firestore.MergeAll)
		count++

		if count%450 == 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
			}
			batch = r.fs.Batch()
		}
	}

	if count%450 != 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
		}
	}
	return count, nil
}

func (r *FirestoreRepo) Delete(ctx context.Context, userID, notificationID string) error {
	doc, err := r.col().Doc(notificationID).Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}
	if v, _ := doc.Data()["userId"].(string); v != userID {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}

	if _, err := doc.Ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nahio/backend/internal/schema"
)

type fakeRepo struct {
	items  map[string]*Notification
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*Notification{}}
}

func (r *fakeRepo) Create(_ context.Context, n Notification) (*Notification, error) {
	r.nextID++
	n.ID = fmt.Sprintf("ntf-%d", r.nextID)
	cp := n
	r.items[n.ID] = &cp
	return &n, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	out := []Notification{}
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	count := int64(0)
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, userID, id string, readAt time.Time) error {
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}
	n.IsRead = true
	n.ReadAt = &readAt
	return nil
}

func (r *fakeRepo) MarkAllRead(_ context.Context, userID string, readAt time.Time) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) Delete(_ context.Context, userID, id string) error {
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("%w: notification not found", ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestNotifyValidatesType(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Notify(ctx, "u-1", "Hello", "world", schema.NotifBooking); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := svc.Notify(ctx, "u-1", "Hello", "", ""); err != nil {
		t.Fatalf("empty type should default to system: %v", err)
	}
	if err := svc.Notify(ctx, "u-1", "Hello", "", "spam"); !IsErrBadRequest(err) {
		t.Fatalf("unknown type: want ErrBadRequest, got %v", err)
	}
	if err := svc.Notify(ctx, "", "Hello", "", schema.NotifSystem); !IsErrBadRequest(err) {
		t.Fatalf("missing user: want ErrBadRequest, got %v", err)
	}

	if len(repo.items) != 2 {
		t.Fatalf("want 2 stored notifications, got %d", len(repo.items))
	}
}

func TestListReturnsUnreadCount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.Notify(ctx, "u-1", fmt.Sprintf("n%d", i), "", schema.NotifSystem); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	out, err := svc.List(ctx, "u-1", false, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out.Notifications) != 3 || out.UnreadCount != 3 {
		t.Fatalf("got %d items, %d unread", len(out.Notifications), out.UnreadCount)
	}
}

func TestMarkReadPaths(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.Notify(ctx, "u-1", fmt.Sprintf("n%d", i), "", schema.NotifSystem); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	// Single mark.
	n, err := svc.MarkRead(ctx, "u-1", MarkReadInput{NotificationID: "ntf-1"})
	if err != nil || n != 1 {
		t.Fatalf("single mark: n=%d err=%v", n, err)
	}
	if !repo.items["ntf-1"].IsRead || repo.items["ntf-1"].ReadAt == nil {
		t.Fatalf("ntf-1 not marked")
	}

	// Neither id nor markAll.
	if _, err := svc.MarkRead(ctx, "u-1", MarkReadInput{}); !IsErrBadRequest(err) {
		t.Fatalf("want ErrBadRequest, got %v", err)
	}

	// Another user cannot mark it.
	if _, err := svc.MarkRead(ctx, "u-2", MarkReadInput{NotificationID: "ntf-2"}); !IsErrNotFound(err) {
		t.Fatalf("cross-user mark: want ErrNotFound, got %v", err)
	}

	// Mark all flips the rest.
	n, err = svc.MarkRead(ctx, "u-1", MarkReadInput{MarkAll: true})
	if err != nil || n != 2 {
		t.Fatalf("mark all: n=%d err=%v", n, err)
	}

	out, err := svc.List(ctx, "u-1", true, 0)
	if err != nil || len(out.Notifications) != 0 || out.UnreadCount != 0 {
		t.Fatalf("unread after mark all: %v", out)
	}
}

func TestDeleteChecksOwnership(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Notify(ctx, "u-1", "hello", "", schema.NotifSystem); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := svc.Delete(ctx, "u-2", "ntf-1"); !IsErrNotFound(err) {
		t.Fatalf("cross-user delete: want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "u-1", "ntf-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("not deleted")
	}
}

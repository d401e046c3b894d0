package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nahio/backend/internal/schema"
)

// Repo is the store port for notifications.
type Repo interface {
	Create(ctx context.Context, n Notification) (*Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int, error)
	Delete(ctx context.Context, userID, notificationID string) error
}

type Service struct {
	repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

var validTypes = map[string]bool{
	schema.NotifBooking:    true,
	schema.NotifInvitation: true,
	schema.NotifSystem:     true,
}

// Notify writes one notification to a user's feed. The booking and
// invitation services call this through their Notifier ports.
func (s *Service) Notify(ctx context.Context, userID, title, message, notifType string) error {
	userID = strings.TrimSpace(userID)
	title = strings.TrimSpace(title)

	if userID == "" || title == "" {
		return fmt.Errorf("%w: userId and title are required", ErrBadRequest)
	}
	if notifType == "" {
		notifType = schema.NotifSystem
	}
	if !validTypes[notifType] {
		return fmt.Errorf("%w: unknown notification type %q", ErrBadRequest, notifType)
	}

	_, err := s.repo.Create(ctx, Notification{
		UserID:    userID,
		Title:     title,
		Message:   strings.TrimSpace(message),
		Type:      notifType,
		IsRead:    false,
		CreatedAt: s.now(),
	})
	return err
}

// List returns a user's feed, newest first, plus the unread count.
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit int) (*ListResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrBadRequest)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	items, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Notifications: items, UnreadCount: unread}, nil
}

// MarkRead marks one notification, or all of them with MarkAll, and
// returns how many were flipped.
func (s *Service) MarkRead(ctx context.Context, userID string, in MarkReadInput) (int, error) {
	userID = strings.TrimSpace(userID)
	in.NotificationID = strings.TrimSpace(in.NotificationID)

	if userID == "" {
		return 0, fmt.Errorf("%w: userId is required", ErrBadRequest)
	}

	now := s.now()
	if in.MarkAll {
		return s.repo.MarkAllRead(ctx, userID, now)
	}
	if in.NotificationID == "" {
		return 0, fmt.Errorf("%w: notificationId or markAll is required", ErrBadRequest)
	}
	if err := s.repo.MarkRead(ctx, userID, in.NotificationID, now); err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *Service) Delete(ctx context.Context, userID, notificationID string) error {
	userID = strings.TrimSpace(userID)
	notificationID = strings.TrimSpace(notificationID)

	if userID == "" || notificationID == "" {
		return fmt.Errorf("%w: userId and notificationId are required", ErrBadRequest)
	}
	return s.repo.Delete(ctx, userID, notificationID)
}

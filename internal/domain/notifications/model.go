package notifications

import "time"

// Notification is one entry in a user's in-app feed.
type Notification struct {
	ID        string     `firestore:"id" json:"id"`
	UserID    string     `firestore:"userId" json:"userId"`
	Title     string     `firestore:"title" json:"title"`
	Message   string     `firestore:"message" json:"message"`
	Type      string     `firestore:"type" json:"type"`
	IsRead    bool       `firestore:"isRead" json:"isRead"`
	ReadAt    *time.Time `firestore:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
}

type ListResult struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unreadCount"`
}

type MarkReadInput struct {
	NotificationID string `json:"notificationId,omitempty"`
	MarkAll        bool   `json:"markAll,omitempty"`
}

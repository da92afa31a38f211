package domain

import "context"

// NotificationKind identifies the type of a collaboration notification.
type NotificationKind string

const (
	NotificationInvite         NotificationKind = "invite"
	NotificationInviteAccepted NotificationKind = "invite-accepted"
)

// Notification describes a collaboration event to deliver to one user.
type Notification struct {
	Kind     NotificationKind
	FromID   string
	FromName string
	ToID     string
	ListID   string
	ListName string
}

// Notifier delivers collaboration notifications. Sends are best-effort:
// callers log failures and never roll back the membership mutation that
// triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

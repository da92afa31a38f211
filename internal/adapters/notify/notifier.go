// Package notify delivers collaboration notifications over email. Delivery
// is best-effort by contract: callers log failures and never roll back the
// membership change that triggered the notification.
package notify

import (
	"context"
	"fmt"

	"placelists/internal/domain"
)

type emailNotifier struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	profiles domain.ProfileStore
}

// NewEmailNotifier returns a Notifier that resolves the recipient's email
// through the profile store and sends a templated message.
func NewEmailNotifier(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, profiles domain.ProfileStore) domain.Notifier {
	return &emailNotifier{mailer: mailer, renderer: renderer, profiles: profiles}
}

func (n *emailNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	recipient, err := n.profiles.GetProfile(ctx, notification.ToID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", notification.ToID, err)
	}
	if recipient.Email == "" {
		return fmt.Errorf("recipient %s has no email address", notification.ToID)
	}

	var templateName string
	var data any
	switch notification.Kind {
	case domain.NotificationInvite:
		templateName = "invite"
		data = &domain.InviteEmailData{
			Email:       recipient.Email,
			InviterName: notification.FromName,
			ListName:    notification.ListName,
			ListID:      notification.ListID,
		}
	case domain.NotificationInviteAccepted:
		templateName = "invite_accepted"
		data = &domain.InviteAcceptedEmailData{
			Email:        recipient.Email,
			AccepterName: notification.FromName,
			ListName:     notification.ListName,
			ListID:       notification.ListID,
		}
	default:
		return fmt.Errorf("unknown notification kind %q", notification.Kind)
	}

	subject, htmlBody, textBody, err := n.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", templateName, err)
	}
	if err := n.mailer.Send(recipient.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	return nil
}

package services

import (
	"context"
	"errors"

	"github.com/siteage/siteage-platform/internal/core/ports"
	"github.com/siteage/siteage-platform/internal/log"
	"github.com/siteage/siteage-platform/pkg/pubsub"
)

type notification struct {
	mailer ports.EmailGateway
}

// NewNotification returns the credential delivery service, driven by pubsub
// events published by the verification coordinator.
func NewNotification(mailer ports.EmailGateway) ports.NotificationService {
	return &notification{mailer: mailer}
}

// SendMagicLinkNotification handles both verification and key rotation
// events; the payload shape is the same for either topic.
func (n *notification) SendMagicLinkNotification(ctx context.Context, payload pubsub.Message) error {
	var ev pubsub.DomainVerifiedEvent
	if err := ev.Unmarshal(payload); err != nil {
		return errors.New("sendMagicLinkNotification unexpected data type")
	}
	if ev.Domain == "" || ev.Email == "" || ev.MagicKey == "" {
		return errors.New("sendMagicLinkNotification incomplete event")
	}

	if err := n.mailer.SendMagicLink(ctx, ev.Email, ev.Domain, ev.MagicKey); err != nil {
		log.Error(ctx, "could not deliver management link", "err", err, "domain", ev.Domain)
		return err
	}
	log.Info(ctx, "management link delivered", "domain", ev.Domain)
	return nil
}

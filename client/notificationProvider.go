package client

import (
	"context"
	"encoding/json"

	"smartcite/models"
)

// NotificationProvider publishes the notifications collection with the
// same citizen/privileged branching as reports. The server is the
// source of truth: notifications are written there when a report
// mutation succeeds and read back here.
type NotificationProvider struct {
	*Provider[models.Notification]
	gw Gateway
}

func NewNotificationProvider(ctx context.Context, session *Session, cache Cache, gw Gateway) *NotificationProvider {
	remote := func(ctx context.Context) ([]models.Notification, error) {
		identity, ok := session.Identity()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		profile, ok := session.Profile()
		if !ok {
			return nil, ErrNotAuthenticated
		}

		if profile.Role.Privileged() {
			return gw.ListNotifications(ctx)
		}
		return gw.ListNotificationsByOwner(ctx, identity.ID)
	}

	return &NotificationProvider{
		Provider: newProvider(ctx, NotificationsKey, session, cache, remote),
		gw:       gw,
	}
}

// Unread counts the notifications not yet marked as read.
func (p *NotificationProvider) Unread() int {
	unread := 0
	for _, notification := range p.Items() {
		if !notification.Read {
			unread++
		}
	}
	return unread
}

// MarkAllRead flips the read flag on every notification, remotely and
// in the published collection. Called when the notifications screen
// gains focus; there is no per-item variant.
func (p *NotificationProvider) MarkAllRead(ctx context.Context) error {
	if _, ok := p.session.Identity(); !ok {
		return ErrNotAuthenticated
	}

	if err := p.gw.MarkNotificationsRead(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	for i := range p.items {
		p.items[i].Read = true
	}
	items := make([]models.Notification, len(p.items))
	copy(items, p.items)
	p.mu.Unlock()

	if encoded, err := json.Marshal(items); err == nil {
		_ = p.cache.Set(p.key, string(encoded))
	}
	return nil
}

package client

import (
	"context"
)

// App is the composition root of the sync layer: explicitly constructed
// services handed to whatever renders the UI, with a lifetime tied to
// the application. No ambient globals.
type App struct {
	Gateway       Gateway
	Session       *Session
	Cache         Cache
	Categories    *CategoryProvider
	Reports       *ReportProvider
	Notifications *NotificationProvider
	Submitter     *Submitter
	Profile       *ProfileUpdater

	cancel context.CancelFunc
}

// NewApp wires the providers and workflows. Close cancels any
// session-triggered load still in flight.
func NewApp(gw Gateway, cache Cache) *App {
	ctx, cancel := context.WithCancel(context.Background())

	session := NewSession()
	categories := NewCategoryProvider(ctx, session, cache, gw)
	reports := NewReportProvider(ctx, session, cache, gw)
	notifications := NewNotificationProvider(ctx, session, cache, gw)

	return &App{
		Gateway:       gw,
		Session:       session,
		Cache:         cache,
		Categories:    categories,
		Reports:       reports,
		Notifications: notifications,
		Submitter:     NewSubmitter(gw, session, cache, categories, reports, notifications),
		Profile:       NewProfileUpdater(gw, session),
		cancel:        cancel,
	}
}

// SignIn authenticates and primes the session; the providers load in
// response to the login transition.
func (a *App) SignIn(ctx context.Context, username, password string) error {
	return SignIn(ctx, a.Gateway, a.Session, username, password)
}

// SignOut ends the session; the providers clear in response.
func (a *App) SignOut(ctx context.Context) error {
	return SignOut(ctx, a.Gateway, a.Session)
}

// Close tears the sync layer down.
func (a *App) Close() {
	a.cancel()
}

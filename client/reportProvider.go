package client

import (
	"context"

	"smartcite/models"
)

// ReportProvider publishes the reports collection. Citizens see their
// own reports; privileged roles see every report.
type ReportProvider struct {
	*Provider[models.Report]
}

func NewReportProvider(ctx context.Context, session *Session, cache Cache, gw Gateway) *ReportProvider {
	remote := func(ctx context.Context) ([]models.Report, error) {
		identity, ok := session.Identity()
		if !ok {
			return nil, ErrNotAuthenticated
		}
		profile, ok := session.Profile()
		if !ok {
			return nil, ErrNotAuthenticated
		}

		if profile.Role.Privileged() {
			return gw.ListReports(ctx)
		}
		return gw.ListReportsByOwner(ctx, identity.ID)
	}

	return &ReportProvider{
		Provider: newProvider(ctx, ReportsKey, session, cache, remote),
	}
}

// Find resolves a report by ID from the published collection.
func (p *ReportProvider) Find(id string) (models.Report, bool) {
	for _, report := range p.Items() {
		if report.ID.Hex() == id {
			return report, true
		}
	}
	return models.Report{}, false
}

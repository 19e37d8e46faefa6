package dispatch

import (
	"context"

	"github.com/courseloop/support-backend/internal/models"
)

// CaseResolver finds the single open case for an external channel identity,
// creating one when none exists. No locking: near-simultaneous first messages
// from the same identity can race and create duplicate cases; lookups always
// take the newest open case.
type CaseResolver struct {
	Store Store
}

// Resolve returns the open case for the identity and whether it was created
// by this call. A store failure is fatal for the inbound event.
func (r CaseResolver) Resolve(ctx context.Context, channel models.Channel, externalID, displayName string) (models.SupportCase, bool, error) {
	c, found, err := r.Store.FindOpenCase(ctx, channel, externalID)
	if err != nil {
		return models.SupportCase{}, false, err
	}
	if found {
		return c, false, nil
	}
	created, err := r.Store.CreateCase(ctx, channel, externalID, displayName)
	if err != nil {
		return models.SupportCase{}, false, err
	}
	return created, true, nil
}

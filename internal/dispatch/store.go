package dispatch

import (
	"context"

	"github.com/courseloop/support-backend/internal/models"
)

// Store is the slice of persistence the dispatcher needs. *db.Store satisfies
// it; tests use an in-memory implementation.
type Store interface {
	FindOpenCase(ctx context.Context, channel models.Channel, externalID string) (models.SupportCase, bool, error)
	CreateCase(ctx context.Context, channel models.Channel, externalID, displayName string) (models.SupportCase, error)
	UpdateCaseRouting(ctx context.Context, caseID string, status models.Status, persona models.Persona) error
	SetCaseType(ctx context.Context, caseID string, caseType models.CaseType) error
	TouchCase(ctx context.Context, caseID string) error
	InsertMessage(ctx context.Context, m models.CaseMessage) (models.CaseMessage, error)
	ListRecentMessages(ctx context.Context, caseID string, limit int) ([]models.CaseMessage, error)
}

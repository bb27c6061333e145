package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climashield/internal/domain"
)

// AreaAssessor implements Transformer over a loaded data snapshot, with
// optional advisory text. It also serves direct lookups from the HTTP API
// and the CLI.
type AreaAssessor struct {
	tables  *domain.Tables
	advisor domain.Advisor
	basis   domain.SlopeBasis
	logger  *slog.Logger
}

// NewAreaAssessor creates an AreaAssessor. Pass a nil advisor to disable
// advisory text.
func NewAreaAssessor(tables *domain.Tables, advisor domain.Advisor, basis domain.SlopeBasis, logger *slog.Logger) *AreaAssessor {
	return &AreaAssessor{
		tables:  tables,
		advisor: advisor,
		basis:   basis,
		logger:  logger,
	}
}

// Assess builds the assessment for area. Unknown areas get neutral defaults.
func (a *AreaAssessor) Assess(ctx context.Context, area string) domain.Assessment {
	assessment := domain.Assess(a.tables, area, a.basis)
	return domain.WithAdvisory(ctx, assessment, a.advisor, a.logger)
}

// Areas lists the areas present in the observation table.
func (a *AreaAssessor) Areas() []string {
	return a.tables.Areas()
}

func (a *AreaAssessor) Transform(ctx context.Context, raw domain.RawRequest) (domain.Assessment, error) {
	req, err := domain.ParseAssessmentRequest(raw)
	if err != nil {
		return domain.Assessment{}, err
	}
	return a.Assess(ctx, req.Area), nil
}

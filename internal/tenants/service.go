// Package tenants resolves and verifies the shop partitions every request
// operates within.
package tenants

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "tenant repository is required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) Create(ctx context.Context, name string, contactEmail *string) (*models.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}

	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         name,
		ContactEmail: contactEmail,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

// VerifyActive confirms the tenant exists and is not disabled. Called by the
// tenant-context middleware before any domain handler runs.
func (s *Service) VerifyActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil && appErr.Code() == apperrors.CodeNotFound {
			return nil, apperrors.New(apperrors.CodeForbidden, "tenant is not recognized")
		}
		return nil, err
	}
	if !tenant.IsActive {
		return nil, apperrors.New(apperrors.CodeForbidden, "tenant is disabled")
	}
	return tenant, nil
}

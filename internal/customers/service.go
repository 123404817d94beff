// Package customers manages the tenant-owned buyer directory referenced by
// orders.
package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

type Input struct {
	Name  string  `json:"name" validate:"required,min=1,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "customer repository is required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input Input) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}

	customer := &models.Customer{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		Phone:    input.Phone,
		Email:    input.Email,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Customer, string, error) {
	found, err := s.repo.List(ctx, tenantID, params)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(found) > limit {
		found = found[:limit]
		last := found[len(found)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return found, next, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, input Input) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}

	customer := &models.Customer{
		ID:       id,
		TenantID: tenantID,
		Name:     name,
		Phone:    input.Phone,
		Email:    input.Email,
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

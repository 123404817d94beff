// Package products manages the catalog: create and update listings, load
// them for checkout, and answer keyword searches.
package products

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/match"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

// searchThreshold is the minimum similarity score a product must reach to
// appear in search results.
const searchThreshold = 60

type CreateInput struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=64"`
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description *string         `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Tags        []string        `json:"tags"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	Stock       int             `json:"stock" validate:"min=0"`
}

type UpdateInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description *string         `json:"description"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Tags        []string        `json:"tags"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	IsActive    bool            `json:"is_active"`
}

// SearchHit pairs a product with its similarity score.
type SearchHit struct {
	Product models.Product `json:"product"`
	Score   int            `json:"score"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "product repository is required")
	}
	return &Service{repo: repo}, nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, input CreateInput) (*models.Product, error) {
	if input.UnitPrice.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "unit_price must not be negative")
	}
	if input.Stock < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "stock must not be negative")
	}

	product := &models.Product{
		ID:          uuid.New(),
		TenantID:    tenantID,
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Tags:        pq.StringArray(input.Tags),
		UnitPrice:   input.UnitPrice,
		Stock:       input.Stock,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
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

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if input.UnitPrice.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "unit_price must not be negative")
	}

	product := &models.Product{
		ID:          id,
		TenantID:    tenantID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Tags:        pq.StringArray(input.Tags),
		UnitPrice:   input.UnitPrice,
		IsActive:    input.IsActive,
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, id)
}

// Search scores the tenant's active products against the keyword and returns
// the hits above the threshold, best first. Name, SKU and tags all count; the
// best-scoring field wins.
func (s *Service) Search(ctx context.Context, tenantID uuid.UUID, keyword string, categoryID *uuid.UUID) ([]SearchHit, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "search keyword is required")
	}

	candidates, err := s.repo.ListActive(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(candidates))
	for _, product := range candidates {
		score := match.Score(keyword, product.Name)
		if skuScore := match.Score(keyword, product.SKU); skuScore > score {
			score = skuScore
		}
		for _, tag := range product.Tags {
			if tagScore := match.Score(keyword, tag); tagScore > score {
				score = tagScore
			}
		}
		if score >= searchThreshold {
			hits = append(hits, SearchHit{Product: product, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	return hits, nil
}

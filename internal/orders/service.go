// Package orders serves the order history surface and the lifecycle
// transitions that happen after checkout: completion and cancellation.
package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/internal/inventory"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	"github.com/avelarsoft/shoplane-backend/pkg/enums"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
	"github.com/avelarsoft/shoplane-backend/pkg/pagination"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service struct {
	tx     TxRunner
	repo   *Repository
	ledger *inventory.Ledger
	logg   *logger.Logger
}

func NewService(tx TxRunner, repo *Repository, ledger *inventory.Ledger, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "transaction runner is required")
	}
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "order repository is required")
	}
	if ledger == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "inventory ledger is required")
	}
	return &Service{tx: tx, repo: repo, ledger: ledger, logg: logg}, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	return s.repo.FindByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	found, err := s.repo.List(ctx, tenantID, filter, params)
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

// Complete moves a pending order to completed.
func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	ok, err := s.repo.TransitionStatus(ctx, tenantID, id, enums.OrderStatusPending, enums.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, transitionRefused(ctx, s.repo, tenantID, id)
	}
	return s.repo.FindByID(ctx, tenantID, id)
}

// Cancel moves a pending order to canceled and returns every reserved line
// quantity to stock. The status flip and the restocks commit atomically.
// Discount usage is deliberately not returned: a consumed slot stays
// consumed even when the order is canceled.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		ok, err := txRepo.TransitionStatus(ctx, tenantID, id, enums.OrderStatusPending, enums.OrderStatusCanceled)
		if err != nil {
			return err
		}
		if !ok {
			// Read through the tx so the refusal does not deadlock
			// against the lock this transaction already holds.
			return transitionRefused(ctx, txRepo, tenantID, id)
		}

		for _, line := range order.Items {
			if err := txLedger.Release(ctx, tenantID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":        id.String(),
			"lines_restocked": len(order.Items),
		})
		s.logg.Info(logCtx, "order canceled")
	}

	return s.repo.FindByID(ctx, tenantID, id)
}

// transitionRefused turns a zero-row status update into the right error: the
// order either is not there or is already past pending.
func transitionRefused(ctx context.Context, repo *Repository, tenantID, id uuid.UUID) error {
	order, err := repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return apperrors.New(apperrors.CodeConflict, "order is already "+order.Status.String())
}

// Package checkout implements the order pipeline: price the cart, validate
// the coupon, reserve stock, consume the coupon's usage slot and write the
// order, all inside one transaction. Stock and usage mutations are
// conditional single statements, so concurrent checkouts racing for the last
// unit or the last coupon slot settle on exactly one winner.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/internal/pricing"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db/models"
	"github.com/avelarsoft/shoplane-backend/pkg/enums"
	apperrors "github.com/avelarsoft/shoplane-backend/pkg/errors"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
	"github.com/avelarsoft/shoplane-backend/pkg/metrics"
)

const (
	abortReasonStock    = "insufficient_stock"
	abortReasonDiscount = "discount_rejected"
	abortReasonInvalid  = "validation"
	abortReasonInternal = "internal"
)

// ItemInput is one cart entry.
type ItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// Input is a checkout or preview request.
type Input struct {
	CustomerID *uuid.UUID  `json:"customer_id"`
	Code       string      `json:"code"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// QuoteLine is a priced cart entry in a preview response.
type QuoteLine struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Quote is the outcome of a preview: the priced cart plus the coupon verdict.
// Previews never mutate stock or usage counters.
type Quote struct {
	Lines          []QuoteLine      `json:"lines"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	FinalAmount    decimal.Decimal  `json:"final_amount"`
	AppliedCode    *string          `json:"applied_code,omitempty"`
	CouponStatus   discounts.Status `json:"coupon_status,omitempty"`
	CouponMessage  string           `json:"coupon_message,omitempty"`
}

type Service struct {
	tx      TxRunner
	stores  StoreBinder
	cfg     config.CheckoutConfig
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(tx TxRunner, stores StoreBinder, cfg config.CheckoutConfig, m *metrics.CheckoutMetrics, logg *logger.Logger) (*Service, error) {
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "transaction runner is required")
	}
	if stores == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "store binder is required")
	}
	return &Service{tx: tx, stores: stores, cfg: cfg, metrics: m, logg: logg, now: time.Now}, nil
}

// Preview prices the cart and reports whether the coupon would apply, without
// reserving stock or consuming usage. An inapplicable coupon never fails a
// preview; the quote carries the reason and full-price totals instead.
func (s *Service) Preview(ctx context.Context, tenantID uuid.UUID, input Input) (*Quote, error) {
	stores := s.stores.Bind(nil)

	lines, priced, err := s.priceCart(ctx, stores, tenantID, input.Items)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Lines:          lines,
		Subtotal:       priced.Subtotal,
		DiscountAmount: decimal.Zero,
		FinalAmount:    priced.Subtotal,
	}

	code := normalizeCode(input.Code)
	if code == "" {
		return quote, nil
	}

	record, status, err := s.resolveCoupon(ctx, stores.Discounts, tenantID, code)
	if err != nil {
		return nil, err
	}
	quote.CouponStatus = status
	quote.CouponMessage = status.Message()
	if status == discounts.StatusValid {
		discounted := pricing.Compute(toPricingLines(lines), record.Amount)
		quote.DiscountAmount = discounted.DiscountAmount
		quote.FinalAmount = discounted.FinalAmount
		quote.AppliedCode = &record.Code
	}
	return quote, nil
}

// Execute runs the checkout pipeline inside one transaction and returns the
// created order. On any abort every reservation taken so far is released in
// reverse order before the transaction rolls back.
func (s *Service) Execute(ctx context.Context, tenantID uuid.UUID, input Input) (*models.Order, error) {
	started := s.now()

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stores := s.stores.Bind(tx)

		created, err := s.execute(ctx, stores, tenantID, input)
		if err != nil {
			return err
		}
		order = created
		return nil
	})

	elapsed := s.now().Sub(started)
	if err != nil {
		reason := abortReason(err)
		s.metrics.ObserveDuration("aborted", elapsed)
		s.metrics.IncAborted(reason)
		if s.logg != nil {
			logCtx := s.logg.WithField(ctx, "abort_reason", reason)
			s.logg.Warn(logCtx, "checkout aborted")
		}
		return nil, err
	}

	s.metrics.ObserveDuration("committed", elapsed)
	s.metrics.IncCommitted()
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID.String(),
			"final_amount": order.FinalAmount.String(),
			"line_count":   len(order.Items),
		})
		s.logg.Info(logCtx, "checkout committed")
	}
	return order, nil
}

func (s *Service) execute(ctx context.Context, stores Stores, tenantID uuid.UUID, input Input) (*models.Order, error) {
	lines, priced, err := s.priceCart(ctx, stores, tenantID, input.Items)
	if err != nil {
		return nil, err
	}

	var coupon *models.DiscountCode
	code := normalizeCode(input.Code)
	if code != "" {
		record, status, err := s.resolveCoupon(ctx, stores.Discounts, tenantID, code)
		if err != nil {
			return nil, err
		}
		if status == discounts.StatusValid {
			coupon = record
		} else if s.cfg.StrictCoupons {
			return nil, apperrors.New(apperrors.CodeDiscountRejected, status.Message()).
				WithDetails(map[string]string{"code": code, "status": string(status)})
		}
	}

	reserved, err := s.reserveAll(ctx, stores.Ledger, tenantID, lines)
	if err != nil {
		return nil, err
	}

	if coupon != nil {
		ok, err := stores.Discounts.IncrementUsage(ctx, tenantID, coupon.ID)
		if err != nil {
			s.releaseReserved(ctx, stores.Ledger, tenantID, reserved)
			return nil, err
		}
		if !ok {
			// Lost the race for the last usage slot after validation.
			if s.cfg.StrictCoupons {
				s.releaseReserved(ctx, stores.Ledger, tenantID, reserved)
				return nil, apperrors.New(apperrors.CodeDiscountRejected, discounts.StatusLimitReached.Message()).
					WithDetails(map[string]string{"code": code, "status": string(discounts.StatusLimitReached)})
			}
			coupon = nil
		}
	}

	order, err := s.writeOrder(ctx, stores, tenantID, input, lines, priced, coupon)
	if err != nil {
		s.releaseReserved(ctx, stores.Ledger, tenantID, reserved)
		return nil, err
	}
	return order, nil
}

func (s *Service) writeOrder(ctx context.Context, stores Stores, tenantID uuid.UUID, input Input, lines []QuoteLine, priced pricing.Breakdown, coupon *models.DiscountCode) (*models.Order, error) {
	breakdown := priced
	var appliedCode *string
	var discountID *uuid.UUID
	if coupon != nil {
		breakdown = pricing.Compute(toPricingLines(lines), coupon.Amount)
		appliedCode = &coupon.Code
		discountID = &coupon.ID
	}

	order := &models.Order{
		ID:             uuid.New(),
		TenantID:       tenantID,
		CustomerID:     input.CustomerID,
		Subtotal:       breakdown.Subtotal,
		DiscountAmount: breakdown.DiscountAmount,
		FinalAmount:    breakdown.FinalAmount,
		AppliedCode:    appliedCode,
		DiscountCodeID: discountID,
		Status:         enums.OrderStatusPending,
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderLine{
			ID:          uuid.New(),
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ProductSKU:  line.ProductSKU,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}

	if err := stores.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

type reservation struct {
	productID uuid.UUID
	quantity  int
}

// reserveAll takes the reservations one line at a time; on the first failure
// it unwinds the lines already taken, newest first.
func (s *Service) reserveAll(ctx context.Context, ledger StockLedger, tenantID uuid.UUID, lines []QuoteLine) ([]reservation, error) {
	reserved := make([]reservation, 0, len(lines))
	for _, line := range lines {
		if err := ledger.Reserve(ctx, tenantID, line.ProductID, line.Quantity); err != nil {
			s.releaseReserved(ctx, ledger, tenantID, reserved)
			return nil, err
		}
		reserved = append(reserved, reservation{productID: line.ProductID, quantity: line.Quantity})
	}
	return reserved, nil
}

func (s *Service) releaseReserved(ctx context.Context, ledger StockLedger, tenantID uuid.UUID, reserved []reservation) {
	var releaseErr error
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		releaseErr = multierr.Append(releaseErr, ledger.Release(ctx, tenantID, r.productID, r.quantity))
	}
	if releaseErr != nil && s.logg != nil {
		s.logg.Error(ctx, "releasing reserved stock after abort", releaseErr)
	}
}

// priceCart loads the cart's products, validates every line and prices the
// cart at full price. Duplicate product ids are merged into one line.
func (s *Service) priceCart(ctx context.Context, stores Stores, tenantID uuid.UUID, items []ItemInput) ([]QuoteLine, pricing.Breakdown, error) {
	if len(items) == 0 {
		return nil, pricing.Breakdown{}, apperrors.New(apperrors.CodeValidation, "at least one item is required")
	}

	merged := make(map[uuid.UUID]int, len(items))
	ordered := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pricing.Breakdown{}, apperrors.New(apperrors.CodeValidation, "quantity must be positive")
		}
		if _, seen := merged[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	found, err := stores.Products.FindManyByIDs(ctx, tenantID, ordered)
	if err != nil {
		return nil, pricing.Breakdown{}, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}

	lines := make([]QuoteLine, 0, len(ordered))
	for _, id := range ordered {
		product, ok := byID[id]
		if !ok {
			return nil, pricing.Breakdown{}, apperrors.New(apperrors.CodeNotFound, "product "+id.String()+" not found")
		}
		if !product.IsActive {
			return nil, pricing.Breakdown{}, apperrors.New(apperrors.CodeValidation, "product "+product.SKU+" is not available")
		}
		quantity := merged[id]
		lines = append(lines, QuoteLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Quantity:    quantity,
			UnitPrice:   product.UnitPrice,
			LineTotal:   pricing.LineTotal(pricing.Line{Quantity: quantity, UnitPrice: product.UnitPrice}),
		})
	}

	return lines, pricing.Compute(toPricingLines(lines), decimal.Zero), nil
}

func (s *Service) resolveCoupon(ctx context.Context, store DiscountStore, tenantID uuid.UUID, code string) (*models.DiscountCode, discounts.Status, error) {
	record, err := store.FindByCode(ctx, tenantID, code)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil && appErr.Code() == apperrors.CodeNotFound {
			return nil, discounts.StatusNotFound, nil
		}
		return nil, "", err
	}
	return record, discounts.Evaluate(record, s.now()), nil
}

func toPricingLines(lines []QuoteLine) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.Line{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func abortReason(err error) string {
	appErr := apperrors.As(err)
	if appErr == nil {
		return abortReasonInternal
	}
	switch appErr.Code() {
	case apperrors.CodeInsufficientStock:
		return abortReasonStock
	case apperrors.CodeDiscountRejected:
		return abortReasonDiscount
	case apperrors.CodeValidation, apperrors.CodeNotFound:
		return abortReasonInvalid
	default:
		return abortReasonInternal
	}
}

package purchase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Step names, in execution order. They appear in error details, logs, spans and metrics.
const (
	StepFetchGood    = "fetch_good"
	StepDeductWallet = "deduct_wallet"
	StepDeductStock  = "deduct_stock"
	StepRecordSale   = "record_sale"
	StepRefundWallet = "refund_wallet"
)

const (
	SuccessMessage = "Purchase successful"

	outcomeSuccess = "success"
	tracerName     = "storefront.purchase"
)

// Result is returned for a completed purchase.
type Result struct {
	Message        string          `json:"message"`
	PurchaseID     int64           `json:"purchase_id"`
	AmountDeducted decimal.Decimal `json:"amount_deducted"`
}

// Service runs the purchase flow against the inventory and customer services.
type Service interface {
	Purchase(ctx context.Context, customerID string, goodID int64) (*Result, error)
}

// ServiceParams bundles the collaborators of the purchase flow.
type ServiceParams struct {
	Inventory Inventory
	Wallets   Wallets
	Ledger    Ledger
	Logger    *logger.Logger
	Metrics   *metrics.PurchaseMetrics
	Tracer    trace.Tracer
	// Compensate refunds the wallet debit when the stock step fails.
	Compensate bool
}

type service struct {
	inventory  Inventory
	wallets    Wallets
	ledger     Ledger
	logg       *logger.Logger
	metrics    *metrics.PurchaseMetrics
	tracer     trace.Tracer
	compensate bool
}

// NewService validates and wires the purchase orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory client is required")
	}
	if params.Wallets == nil {
		return nil, fmt.Errorf("wallet client is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	tracer := params.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &service{
		inventory:  params.Inventory,
		wallets:    params.Wallets,
		ledger:     params.Ledger,
		logg:       params.Logger,
		metrics:    params.Metrics,
		tracer:     tracer,
		compensate: params.Compensate,
	}, nil
}

// Purchase checks the price, debits the wallet, takes one unit of stock and
// records the sale, in that order. The first failing step aborts the flow.
func (s *service) Purchase(ctx context.Context, customerID string, goodID int64) (*Result, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if goodID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "good id must be positive").
			WithDetails(map[string]any{"good_id": goodID})
	}

	ctx, span := s.tracer.Start(ctx, "purchase", trace.WithAttributes(
		attribute.String("customer_id", customerID),
		attribute.Int64("good_id", goodID),
	))
	defer span.End()
	ctx = s.logg.WithCustomerID(ctx, customerID)
	ctx = s.logg.WithGoodID(ctx, goodID)

	var price decimal.Decimal
	if err := s.run(ctx, StepFetchGood, func(ctx context.Context) error {
		good, err := s.inventory.GetGood(ctx, goodID)
		if err != nil {
			return err
		}
		price = types.RoundMoney(good.Price)
		return nil
	}); err != nil {
		return nil, s.fail(ctx, span, classify(StepFetchGood, err))
	}
	span.SetAttributes(attribute.String("price", price.String()))

	if err := s.run(ctx, StepDeductWallet, func(ctx context.Context) error {
		_, err := s.wallets.DeductWallet(ctx, customerID, price)
		return err
	}); err != nil {
		return nil, s.fail(ctx, span, classify(StepDeductWallet, err))
	}

	if err := s.run(ctx, StepDeductStock, func(ctx context.Context) error {
		_, err := s.inventory.DeductStock(ctx, goodID)
		return err
	}); err != nil {
		classified := classify(StepDeductStock, err)
		if s.compensate {
			classified = s.refund(ctx, customerID, price, classified)
		}
		return nil, s.fail(ctx, span, classified)
	}

	var recorded int64
	if err := s.run(ctx, StepRecordSale, func(ctx context.Context) error {
		rec, err := s.ledger.Record(ctx, goodID, customerID, price)
		if err != nil {
			return err
		}
		recorded = rec.ID
		return nil
	}); err != nil {
		// The wallet and stock were both mutated; the ledger row is what is missing.
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"amount_deducted": price.String(),
			"reconcile":       true,
		}), "purchase not recorded after wallet and stock were deducted", err)
		return nil, s.fail(ctx, span, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to record purchase").
			WithDetails(map[string]any{"step": StepRecordSale}))
	}

	s.metrics.IncOutcome(outcomeSuccess)
	span.SetAttributes(attribute.Int64("purchase_id", recorded))
	s.logg.Info(s.logg.WithField(ctx, "purchase_id", recorded), "purchase completed")
	return &Result{
		Message:        SuccessMessage,
		PurchaseID:     recorded,
		AmountDeducted: price,
	}, nil
}

func (s *service) run(ctx context.Context, step string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, step)
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStep(step, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(pkgerrors.CodeOf(err)))
	}
	return err
}

// refund credits the debited amount back. A failed refund keeps the stock
// step's classification and is flagged in the details.
func (s *service) refund(ctx context.Context, customerID string, amount decimal.Decimal, cause *pkgerrors.Error) *pkgerrors.Error {
	refundCtx := context.WithoutCancel(ctx)
	err := s.run(refundCtx, StepRefundWallet, func(ctx context.Context) error {
		_, err := s.wallets.ChargeWallet(ctx, customerID, amount)
		return err
	})

	details := stepDetails(cause)
	if err != nil {
		s.metrics.IncCompensation("failed")
		details["compensation"] = "failed"
		s.logg.Error(s.logg.WithField(ctx, "amount", amount.String()), "purchase compensation failed", multierr.Combine(cause, err))
	} else {
		s.metrics.IncCompensation("ok")
		details["compensation"] = "refunded"
		s.logg.Warn(s.logg.WithField(ctx, "amount", amount.String()), "wallet refunded after stock step failed")
	}
	return cause.WithDetails(details)
}

func (s *service) fail(ctx context.Context, span trace.Span, err *pkgerrors.Error) error {
	s.metrics.IncOutcome(strings.ToLower(string(err.Code())))
	span.SetStatus(codes.Error, err.Message())
	if step, ok := stepDetails(err)["step"].(string); ok {
		ctx = s.logg.WithStep(ctx, step)
	}
	s.logg.Warn(ctx, "purchase aborted: "+err.Message())
	return err
}

// classify maps a collaborator failure onto the purchase error taxonomy.
// Unknown goods and customers are the caller's mistake, so they surface as 400.
func classify(step string, err error) *pkgerrors.Error {
	code := pkgerrors.CodeOf(err)
	message := err.Error()
	if typed := pkgerrors.As(err); typed != nil {
		message = typed.Message()
	}

	switch code {
	case pkgerrors.CodeNotFound:
		code = pkgerrors.CodeReferenceNotFound
	case pkgerrors.CodeInsufficientFunds, pkgerrors.CodeOutOfStock, pkgerrors.CodeValidation:
	default:
		code = pkgerrors.CodeInternal
	}
	return pkgerrors.Wrap(code, err, fmt.Sprintf("%s failed: %s", step, message)).
		WithDetails(map[string]any{"step": step})
}

func stepDetails(err *pkgerrors.Error) map[string]any {
	out := map[string]any{}
	if existing, ok := err.Details().(map[string]any); ok {
		for k, v := range existing {
			out[k] = v
		}
	}
	return out
}

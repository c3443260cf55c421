package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/internal/service/confirmation"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

const (
	msgAlreadySettled = "payment already settled"
	msgPending        = "payment pending, will finalize asynchronously"
	msgRequiresAction = "additional authentication required"
	msgReconcileFail  = "payment was not completed"
)

type Composer interface {
	Compose(requested model.PaymentRequest, pointsBalance int64) (model.PaymentRequest, error)
}

type FeesClient interface {
	OpenSession(ctx context.Context, req model.PaymentRequest) (*model.PaymentBreakdown, error)
}

type GatewayClient interface {
	Confirm(ctx context.Context, handle string) (model.GatewayConfirmation, error)
}

type Classifier interface {
	Classify(err error) model.Classification
	ClassifyReported(conf model.GatewayConfirmation) model.Classification
}

type SessionStore interface {
	Save(stl model.Settlement)
	ByID(id uuid.UUID) (model.Settlement, error)
	Delete(id uuid.UUID)
}

type Reconciler interface {
	Resolve(ctx context.Context, sessionID string, submittedAt time.Time) (model.Outcome, error)
}

type FinalizedSender interface {
	SendSettlementFinalized(ctx context.Context, event model.FinalizedEvent) error
}

// service is the settlement orchestrator: it wires the composer, the
// fees backend and the confirmation controller, and is the single
// source of truth for "is this payment already settled". One instance
// serves many checkouts; each checkout is one stored settlement with
// its own confirmation controller.
type service struct {
	composer   Composer
	fees       FeesClient
	gateway    GatewayClient
	classifier Classifier
	store      SessionStore
	reconciler Reconciler
	sender     FinalizedSender

	mu    sync.Mutex
	ctrls map[uuid.UUID]*confirmation.Controller
}

func NewSettlementService(
	composer Composer,
	fees FeesClient,
	gateway GatewayClient,
	classifier Classifier,
	store SessionStore,
	reconciler Reconciler,
	sender FinalizedSender,
) *service {
	return &service{
		composer:   composer,
		fees:       fees,
		gateway:    gateway,
		classifier: classifier,
		store:      store,
		reconciler: reconciler,
		sender:     sender,
		ctrls:      make(map[uuid.UUID]*confirmation.Controller),
	}
}

// Initiate composes the request, opens a payment session and registers
// the checkout. When nothing remains to charge through the gateway the
// settlement completes here, with zero confirmation attempts: a
// zero-amount confirmation is meaningless to the gateway.
func (svc *service) Initiate(
	ctx context.Context,
	params model.InitiateParams,
) (*model.Settlement, error) {
	const op = "settlement.service.Initiate"
	log := logger.With(
		logger.Int64("task_id", params.Request.TaskID),
		logger.String("charge_method", string(params.Request.ChargeMethod)),
	)

	composed, err := svc.composer.Compose(params.Request, params.PointsBalance)
	if err != nil {
		log.Warn(ctx, "compose rejected request", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	breakdown, err := svc.fees.OpenSession(ctx, composed)
	if err != nil {
		log.Error(ctx, "open session", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stl := model.Settlement{
		ID:        uuid.New(),
		Request:   composed,
		Breakdown: *breakdown,
		Attempt:   model.ConfirmationAttempt{Status: model.ConfirmationIdle},
		State:     model.StateAwaitingConfirmation,
		CreatedAt: time.Now(),
	}

	if breakdown.ResidualGatewayAmount == 0 {
		stl.State = model.StateSettled
		svc.store.Save(stl)
		svc.emitFinalized(ctx, &stl)
		log.Info(ctx, "settled without gateway charge",
			logger.String("settlement_id", stl.ID.String()),
			logger.Int64("total_amount", breakdown.TotalAmount),
		)
		return &stl, nil
	}

	svc.registerController(stl.ID, breakdown.ConfirmationHandle)
	svc.store.Save(stl)

	log.Info(ctx, "settlement initiated",
		logger.String("settlement_id", stl.ID.String()),
		logger.Int64("residual", breakdown.ResidualGatewayAmount),
	)
	return &stl, nil
}

// Confirm drives one confirmation attempt. It is a no-op success when
// the settlement is already settled, and never re-opens a session:
// retrying after a failure reuses the breakdown already handed to the
// gateway.
func (svc *service) Confirm(
	ctx context.Context,
	id uuid.UUID,
) (*model.SettlementResult, error) {
	const op = "settlement.service.Confirm"
	log := logger.With(logger.String("settlement_id", id.String()))

	stl, err := svc.store.ByID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch stl.State {
	case model.StateSettled:
		return &model.SettlementResult{
			Outcome:   model.OutcomeSettled,
			Message:   msgAlreadySettled,
			Breakdown: stl.Breakdown,
		}, nil
	case model.StateAwaitingConfirmation:
	default:
		log.Error(ctx, "confirm in wrong state", logger.String("state", string(stl.State)))
		return nil, fmt.Errorf("%s: %w", op, model.ErrSettlementConflict)
	}

	ctrl, ok := svc.controller(id)
	if !ok {
		return nil, fmt.Errorf("%s: controller gone: %w", op, model.ErrSettlementNotFound)
	}

	attempt, err := ctrl.Submit(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// A cancel or eviction that landed while the gateway call was in
	// flight wins: the stale result must not resurrect the session.
	stl, err = svc.store.ByID(id)
	if err != nil {
		svc.dropController(id)
		log.Warn(ctx, "settlement gone during confirmation, result discarded",
			logger.String("attempt_status", string(attempt.Status)),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stl.Attempt = attempt
	if attempt.Status == model.ConfirmationSucceeded {
		stl.State = model.StateSettled
	}
	svc.store.Save(stl)

	switch attempt.Status {
	case model.ConfirmationSucceeded:
		svc.dropController(id)
		svc.emitFinalized(ctx, &stl)
		log.Info(ctx, "settlement confirmed", logger.Int("attempts", attempt.AttemptCount))
		return &model.SettlementResult{
			Outcome:   model.OutcomeSettled,
			Breakdown: stl.Breakdown,
		}, nil
	case model.ConfirmationProcessing:
		log.Info(ctx, "confirmation pending gateway webhook")
		return &model.SettlementResult{
			Outcome:   model.OutcomePendingReconciliation,
			Message:   msgPending,
			Breakdown: stl.Breakdown,
		}, nil
	case model.ConfirmationRequiresAction:
		return &model.SettlementResult{
			Outcome:   model.OutcomeRequiresAction,
			Message:   msgRequiresAction,
			Breakdown: stl.Breakdown,
		}, nil
	case model.ConfirmationFailed:
		result := &model.SettlementResult{
			Outcome:   model.OutcomeFailed,
			Breakdown: stl.Breakdown,
		}
		if attempt.LastError != nil {
			result.Message = attempt.LastError.UserMessage
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%s: attempt status %q: %w", op, attempt.Status, model.ErrUnknownStatus)
	}
}

// Reconcile resolves a confirmation stuck in Processing via the
// backend's out-of-band status check. It never re-submits.
func (svc *service) Reconcile(
	ctx context.Context,
	id uuid.UUID,
) (*model.SettlementResult, error) {
	const op = "settlement.service.Reconcile"
	log := logger.With(logger.String("settlement_id", id.String()))

	stl, err := svc.store.ByID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stl.State == model.StateSettled {
		return &model.SettlementResult{
			Outcome:   model.OutcomeSettled,
			Message:   msgAlreadySettled,
			Breakdown: stl.Breakdown,
		}, nil
	}
	if stl.Attempt.Status != model.ConfirmationProcessing {
		return nil, fmt.Errorf("%s: nothing to reconcile: %w", op, model.ErrSettlementConflict)
	}

	outcome, err := svc.reconciler.Resolve(ctx, stl.Breakdown.SessionID, stl.Attempt.SubmittedAt)
	if err != nil {
		log.Error(ctx, "reconciliation check failed", logger.ErrorF(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Same rule as Confirm: a verdict for a session cancelled or evicted
	// during the status check is discarded.
	stl, err = svc.store.ByID(id)
	if err != nil {
		svc.dropController(id)
		log.Warn(ctx, "settlement gone during reconciliation, verdict discarded",
			logger.String("outcome", string(outcome)),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch outcome {
	case model.OutcomeSettled:
		if ctrl, ok := svc.controller(id); ok {
			stl.Attempt = ctrl.ResolveProcessing(true, nil)
		} else {
			stl.Attempt.Status = model.ConfirmationSucceeded
			stl.Attempt.LastError = nil
		}
		stl.State = model.StateSettled
		svc.store.Save(stl)
		svc.dropController(id)
		svc.emitFinalized(ctx, &stl)
		log.Info(ctx, "settlement reconciled as settled")
		return &model.SettlementResult{
			Outcome:   model.OutcomeSettled,
			Breakdown: stl.Breakdown,
		}, nil
	case model.OutcomeFailed:
		cls := model.Classification{
			Kind:        model.KindTransientError,
			UserMessage: msgReconcileFail,
			Retryable:   true,
		}
		if ctrl, ok := svc.controller(id); ok {
			stl.Attempt = ctrl.ResolveProcessing(false, &cls)
		} else {
			stl.Attempt.Status = model.ConfirmationFailed
			stl.Attempt.LastError = &cls
		}
		svc.store.Save(stl)
		log.Warn(ctx, "settlement reconciled as failed")
		return &model.SettlementResult{
			Outcome:   model.OutcomeFailed,
			Message:   msgReconcileFail,
			Breakdown: stl.Breakdown,
		}, nil
	case model.OutcomePendingReconciliation:
		return &model.SettlementResult{
			Outcome:   model.OutcomePendingReconciliation,
			Message:   msgPending,
			Breakdown: stl.Breakdown,
		}, nil
	default:
		return nil, fmt.Errorf("%s: outcome %q: %w", op, outcome, model.ErrUnknownStatus)
	}
}

// Cancel discards local checkout state. It is illegal once settled and
// never attempts to cancel the session already opened on the backend.
func (svc *service) Cancel(ctx context.Context, id uuid.UUID) error {
	const op = "settlement.service.Cancel"

	stl, err := svc.store.ByID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if stl.State == model.StateSettled {
		logger.Error(ctx, "cancel of settled payment",
			logger.String("settlement_id", id.String()),
		)
		return fmt.Errorf("%s: %w", op, model.ErrSettlementConflict)
	}

	svc.dropController(id)
	svc.store.Delete(id)

	logger.Info(ctx, "settlement cancelled", logger.String("settlement_id", id.String()))
	return nil
}

// SettlementByID returns the current snapshot, reconciling first when a
// confirmation is parked in Processing so a remounting caller sees the
// freshest state without submitting again.
func (svc *service) SettlementByID(ctx context.Context, id uuid.UUID) (*model.Settlement, error) {
	const op = "settlement.service.SettlementByID"

	stl, err := svc.store.ByID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stl.State == model.StateAwaitingConfirmation &&
		stl.Attempt.Status == model.ConfirmationProcessing {
		if _, err := svc.Reconcile(ctx, id); err != nil {
			logger.Warn(ctx, "reconcile on read failed",
				logger.String("settlement_id", id.String()),
				logger.ErrorF(err),
			)
		} else {
			stl, err = svc.store.ByID(id)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	return &stl, nil
}

// DropLocalState releases the controller for an evicted session. Wired
// to the store's sweeper.
func (svc *service) DropLocalState(id uuid.UUID) {
	svc.dropController(id)
}

func (svc *service) emitFinalized(ctx context.Context, stl *model.Settlement) {
	if svc.sender == nil {
		return
	}

	event := model.FinalizedEvent{
		EventID:      uuid.New(),
		SettlementID: stl.ID,
		TaskID:       stl.Request.TaskID,
		TotalAmount:  stl.Breakdown.TotalAmount,
		Residual:     stl.Breakdown.ResidualGatewayAmount,
		Currency:     stl.Breakdown.Currency,
		Outcome:      model.OutcomeSettled,
	}
	// The event is advisory; settlement state never depends on it.
	if err := svc.sender.SendSettlementFinalized(ctx, event); err != nil {
		logger.Error(ctx, "send settlement finalized event",
			logger.String("settlement_id", stl.ID.String()),
			logger.ErrorF(err),
		)
	}
}

func (svc *service) registerController(id uuid.UUID, handle string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.ctrls[id] = confirmation.NewController(handle, svc.gateway, svc.classifier)
}

func (svc *service) controller(id uuid.UUID) (*confirmation.Controller, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	ctrl, ok := svc.ctrls[id]
	return ctrl, ok
}

func (svc *service) dropController(id uuid.UUID) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.ctrls, id)
}

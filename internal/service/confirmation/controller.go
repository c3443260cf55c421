package confirmation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

type GatewayClient interface {
	Confirm(ctx context.Context, handle string) (model.GatewayConfirmation, error)
}

type Classifier interface {
	Classify(err error) model.Classification
	ClassifyReported(conf model.GatewayConfirmation) model.Classification
}

// Controller drives a single confirmation attempt for one handle.
// It owns the status/attemptCount pair exclusively: the guard in Submit
// drops re-entrant submissions instead of queueing them, so at most one
// confirm call per handle is ever in flight.
type Controller struct {
	mu       sync.Mutex
	handle   string
	gateway  GatewayClient
	classify Classifier
	attempt  model.ConfirmationAttempt
}

func NewController(handle string, gateway GatewayClient, classify Classifier) *Controller {
	return &Controller{
		handle:   handle,
		gateway:  gateway,
		classify: classify,
		attempt:  model.ConfirmationAttempt{Status: model.ConfirmationIdle},
	}
}

// Attempt returns a snapshot of the current attempt state.
func (c *Controller) Attempt() model.ConfirmationAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// ResolveProcessing applies an out-of-band reconciliation verdict to an
// attempt that is sitting in Processing. It is a no-op in every other
// state: a verdict arriving after a local transition must never win.
func (c *Controller) ResolveProcessing(
	settled bool,
	cls *model.Classification,
) model.ConfirmationAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt.Status != model.ConfirmationProcessing {
		return c.attempt
	}

	if settled {
		c.attempt.Status = model.ConfirmationSucceeded
		c.attempt.LastError = nil
	} else {
		c.attempt.Status = model.ConfirmationFailed
		c.attempt.LastError = cls
	}
	return c.attempt
}

// Submit runs one confirmation round trip against the gateway.
//
// Legal entry states are Idle, Failed and RequiresAction. A submit while
// Succeeded returns success locally, without a network call: once a
// handle has been confirmed it stays confirmed no matter how many times
// a double click or re-render asks again. A submit while Processing
// returns the provisional state for the same reason. A submit while
// another one is still in flight is dropped with ErrConfirmationInFlight.
func (c *Controller) Submit(ctx context.Context) (model.ConfirmationAttempt, error) {
	const op = "settlement.confirmation.Submit"
	log := logger.With(logger.String("confirmation_handle", c.handle))

	c.mu.Lock()
	switch c.attempt.Status {
	case model.ConfirmationSucceeded, model.ConfirmationProcessing:
		snap := c.attempt
		c.mu.Unlock()
		log.Info(ctx, "duplicate submit absorbed locally",
			logger.String("status", string(snap.Status)),
		)
		return snap, nil
	case model.ConfirmationSubmitting:
		snap := c.attempt
		c.mu.Unlock()
		log.Warn(ctx, "submit dropped, confirmation already in flight")
		return snap, fmt.Errorf("%s: %w", op, model.ErrConfirmationInFlight)
	case model.ConfirmationIdle, model.ConfirmationFailed, model.ConfirmationRequiresAction:
		c.attempt.Status = model.ConfirmationSubmitting
		c.attempt.AttemptCount++
		c.attempt.SubmittedAt = time.Now()
		c.attempt.LastError = nil
	default:
		snap := c.attempt
		c.mu.Unlock()
		return snap, fmt.Errorf("%s: status %q: %w", op, snap.Status, model.ErrUnknownStatus)
	}
	c.mu.Unlock()

	conf, err := c.gateway.Confirm(ctx, c.handle)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		cls := c.classify.Classify(err)
		if cls.Kind == model.KindAlreadySettled {
			// The gateway settled this handle before we heard back,
			// typically via its webhook. That is a success.
			log.Info(ctx, "gateway reports handle already settled")
			c.attempt.Status = model.ConfirmationSucceeded
			c.attempt.LastError = nil
			return c.attempt, nil
		}

		log.Error(ctx, "confirmation failed",
			logger.String("kind", string(cls.Kind)),
			logger.ErrorF(err),
		)
		c.attempt.Status = model.ConfirmationFailed
		c.attempt.LastError = &cls
		return c.attempt, nil
	}

	switch conf.Status {
	case model.GatewayStatusSucceeded:
		c.attempt.Status = model.ConfirmationSucceeded
	case model.GatewayStatusRequiresAction:
		// Step-up authentication runs inside the gateway's own UI;
		// the next Submit re-enters once the user completes it.
		c.attempt.Status = model.ConfirmationRequiresAction
	case model.GatewayStatusProcessing:
		// Provisional success. Final settlement is decided by the
		// gateway webhook; the caller reconciles out of band.
		c.attempt.Status = model.ConfirmationProcessing
	case model.GatewayStatusFailed:
		cls := c.classify.ClassifyReported(conf)
		c.attempt.Status = model.ConfirmationFailed
		c.attempt.LastError = &cls
	default:
		log.Error(ctx, "unknown gateway status", logger.String("status", string(conf.Status)))
		cls := c.classify.Classify(fmt.Errorf("gateway status %q", conf.Status))
		c.attempt.Status = model.ConfirmationFailed
		c.attempt.LastError = &cls
	}

	return c.attempt, nil
}

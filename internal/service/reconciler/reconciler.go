package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	feesclient "github.com/ZIon2025-x/linku-settlement/internal/client/http/fees"
	"github.com/ZIon2025-x/linku-settlement/internal/model"
	"github.com/ZIon2025-x/linku-settlement/pkg/logger"
)

const maxStatusRetries = 3

type FeesClient interface {
	SessionStatus(ctx context.Context, sessionID string) (string, error)
}

// reconciler resolves confirmations that ended in a processing status.
// A processing status is not locally terminal: the gateway decides the
// final outcome via its webhook, and the fees backend records it. This
// check asks the backend "did this actually settle?" without ever
// re-submitting the confirmation.
type reconciler struct {
	fees    FeesClient
	window  time.Duration
	backoff time.Duration
}

func NewReconciler(fees FeesClient, window, backoff time.Duration) *reconciler {
	return &reconciler{
		fees:    fees,
		window:  window,
		backoff: backoff,
	}
}

// Resolve returns the settled/failed outcome once the backend has seen
// the webhook, or PendingReconciliation while the pending window since
// submittedAt is still open. A session still pending after the window
// is treated as failed; the exact cutoff is the backend's contract.
func (r *reconciler) Resolve(
	ctx context.Context,
	sessionID string,
	submittedAt time.Time,
) (model.Outcome, error) {
	const op = "settlement.reconciler.Resolve"
	log := logger.With(logger.String("session_id", sessionID))

	var status string
	backoff := retry.WithMaxRetries(maxStatusRetries, retry.NewExponential(r.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var sErr error
		status, sErr = r.fees.SessionStatus(ctx, sessionID)
		if sErr != nil {
			// Transport hiccups only; the status read is safe to repeat.
			return retry.RetryableError(sErr)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, "session status check failed", logger.ErrorF(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	switch status {
	case feesclient.SessionStatusFinalized:
		return model.OutcomeSettled, nil
	case feesclient.SessionStatusFailed:
		return model.OutcomeFailed, nil
	case feesclient.SessionStatusPending:
		if time.Since(submittedAt) > r.window {
			log.Warn(ctx, "pending window elapsed, treating as failed",
				logger.Duration("window", r.window),
			)
			return model.OutcomeFailed, nil
		}
		return model.OutcomePendingReconciliation, nil
	default:
		log.Error(ctx, "unknown session status", logger.String("status", status))
		return "", fmt.Errorf("%s: status %q: %w", op, status, model.ErrUnknownStatus)
	}
}

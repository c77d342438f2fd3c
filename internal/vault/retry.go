package vault

import (
	"context"
	"errors"
	"time"

	"bwtui/internal/model"

	"github.com/cenkalti/backoff/v4"
)

// ListItemsWithRetry re-lists after a mutation. The agent occasionally fails right after
// a write while it flushes its local cache, so transient AgentErrors are retried briefly.
// ParseErrors are permanent.
func ListItemsWithRetry(ctx context.Context, a Agent, session string, maxElapsed time.Duration) ([]model.Item, error) {
	if maxElapsed <= 0 {
		return a.ListItems(ctx, session)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed

	var items []model.Item
	op := func() error {
		var err error
		items, err = a.ListItems(ctx, session)
		var perr *ParseError
		if errors.As(err, &perr) || errors.Is(err, ErrNotInstalled) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return items, nil
}

package translator

import (
	"context"

	"github.com/sethvargo/go-retry"
)

// retry runs fn up to maxAttempts times. fn reports whether its error may be
// retried; the backoff before attempt N is backoffBase * 2^(N-2).
func (c *Client) retry(ctx context.Context, fn func(context.Context) (bool, error)) error {
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(c.backoffBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		retryable, err := fn(ctx)
		if err != nil && retryable {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Package retry provides bounded retry with backoff for transient
// failures, used by the summarization engine around inference calls.
//
// Basic usage:
//
//	text, err := retry.DoWithResult(func() (string, error) {
//		return backend.Generate(ctx, file, prompt)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 5 * time.Second},
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//	})
//
// DefaultRetryIf consults the typed error taxonomy: only network and
// backend_transient errors are retried.
package retry

// Package retry re-runs operations that fail with transient errors, waiting
// an exponentially growing, jittered delay between attempts.
//
// Two classifiers are provided: PostgresClassifier for the progress store and
// HTTPClassifier for the AI validation and remote exercise services.
//
//	exec := retry.NewExecutor(retry.NewHTTPClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return call(ctx)
//	})
//
// Executor instances are safe for concurrent use. WithOnRetry returns a copy,
// leaving the receiver unchanged.
package retry

/*
Package errors provides semantic error types for the flatstore storage layer.

Every failure mode the storage layer distinguishes has a sentinel error and a
typed error carrying context. Typed errors implement Is so that callers can use
the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrCoercion        = errors.New("coercion failed")
	    ErrSchemaViolation = errors.New("schema violation")
	    ErrAlreadyExists   = errors.New("key already exists")
	    ErrBackingStore    = errors.New("backing store failure")
	    ErrConfiguration   = errors.New("invalid configuration")
	    ErrBatchFailed     = errors.New("batch failed")
	)

Usage:

	outcome, err := gateway.PutOne(ctx, item, true)
	switch {
	case err == nil && outcome == storagemodels.Skipped:
	    // duplicate, ignored
	case errors.IsBackingStore(err):
	    // network or throughput failure, may be retried by the caller
	case errors.IsSchemaViolation(err):
	    // programming error, never retried
	}

ConditionalWriteSkippedError is informational. Gateways log it and report
the write as skipped instead of returning it.
*/
package errors

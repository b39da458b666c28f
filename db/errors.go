package db

import (
	"errors"
	"fmt"
)

// ErrCancelled is the distinguished non-error signal spec §7 describes: "it
// never updates caches and is re-raised unchanged." Callers check it with
// errors.Is, never by comparing against a query's normal failure modes.
var ErrCancelled = errors.New("db: query cancelled")

// ErrQueryFailed is the sentinel every QueryError is Is-compatible with,
// mirroring syssam-velox's errors.go NotFoundError/ErrNotFound pair: a
// caller that only cares "did some query fail" checks errors.Is(err,
// ErrQueryFailed) without switching on every possible Code.
var ErrQueryFailed = errors.New("db: query failed")

// QueryError reports a system failure (§7, class 3: I/O, corrupt cache, OOM
// in classpath reading) or an input error a query could not recover from on
// its own. Resolution/type failures (§7, class 2) are never QueryErrors —
// those become diagnostics in a successful result, so downstream queries
// keep running against Unknown/Error types.
type QueryError struct {
	Code  string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("db: query %q failed (%s): %v", e.Query, e.Code, e.Err)
	}
	return fmt.Sprintf("db: query %q failed (%s)", e.Query, e.Code)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Is makes every *QueryError satisfy errors.Is(err, ErrQueryFailed), the
// same sentinel-matching shape NotFoundError uses against ErrNotFound.
func (e *QueryError) Is(target error) bool { return target == ErrQueryFailed }

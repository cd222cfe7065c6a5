package admin

import "errors"

var ErrSelfDeletion = errors.New("cannot delete your own account")

// CascadeError wraps the failure that aborted a cascading mutation. By the
// time it is returned, the transaction has rolled back and no partial effect
// remains.
type CascadeError struct {
	Cause error
}

func (e *CascadeError) Error() string { return "cascade failed: " + e.Cause.Error() }
func (e *CascadeError) Unwrap() error { return e.Cause }

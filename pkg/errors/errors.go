package errors

import "errors"

// ErrOptimisticLock is returned when a conditional update matched no row:
// the record changed (or left the expected state) since it was read.
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")

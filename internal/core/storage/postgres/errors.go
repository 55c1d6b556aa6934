package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/aevon-lab/callstats/internal/syncdelta"
	"github.com/lib/pq"
)

const (
	// pqClassConnection covers 08xxx connection exceptions.
	pqClassConnection = "08"
	// pqSerializationFailure is raised under SERIALIZABLE isolation.
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// isConflict reports whether err means a concurrent writer won and the
// operation may be retried against fresh state.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}

// isUnavailable reports whether err means the backend cannot be reached.
func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == pqClassConnection
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify maps driver errors onto the syncdelta error vocabulary.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, syncdelta.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/campushq/vaultd/internal/errdefs"
)

// storageErr wraps a driver failure for the given operation. Connection-class
// failures wrap errdefs.ErrConnection so the transport answers 502 instead of
// a generic 500; everything else keeps the raw driver error in the chain.
func storageErr(op string, err error) error {
	if isConnectionErr(err) {
		return fmt.Errorf("%w: %s: %v", errdefs.ErrConnection, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConnectionErr detects an unreachable or dropped persistence backend. The
// pgdriver surfaces network failures as net.OpError or a bare EOF on a dead
// connection; the stdlib pool reports a closed handle only as message text.
func isConnectionErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresClassifier treats connection, resource and operator-intervention
// failures as transient, along with serialization failures and deadlocks.
type PostgresClassifier struct{}

// NewPostgresClassifier returns a PostgresClassifier.
func NewPostgresClassifier() *PostgresClassifier {
	return &PostgresClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *PostgresClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientSQLState(pgErr.Code)
	}
	return isNetworkError(err) || mentionsConnectionFailure(err)
}

// transientSQLState matches classes 08, 53 and 57 plus a few single codes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func transientSQLState(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "08", "53", "57":
		return true
	}
	switch code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// StatusError is returned by HTTP collaborators for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// HTTPClassifier treats 5xx, 429 and 408 responses as transient, plus
// network failures. Cancellation is never transient.
type HTTPClassifier struct{}

// NewHTTPClassifier returns an HTTPClassifier.
func NewHTTPClassifier() *HTTPClassifier {
	return &HTTPClassifier{}
}

// IsTransient reports whether err is worth retrying.
func (c *HTTPClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code >= http.StatusInternalServerError:
			return true
		case statusErr.Code == http.StatusTooManyRequests, statusErr.Code == http.StatusRequestTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return isNetworkError(err) || mentionsConnectionFailure(err)
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	for _, target := range []error{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.EPIPE} {
		if errors.Is(err, target) {
			return true
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var connectionFailureText = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
}

func mentionsConnectionFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range connectionFailureText {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

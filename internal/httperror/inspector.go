package httperror

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Cause names the class of an HTTP exchange failure.
type Cause string

// Causes reported by Classify.
const (
	CauseDNS               Cause = "dns"
	CauseConnectionRefused Cause = "connection_refused"
	CauseTimeout           Cause = "timeout"
	CauseTLS               Cause = "tls"
	CauseCanceled          Cause = "canceled"
	CauseHTTPStatus        Cause = "http_status"
	CauseUnknown           Cause = "unknown"
)

// Inspector provides methods for analyzing HTTP transport errors.
type Inspector interface {
	// IsDNSError returns true if the host name could not be resolved.
	IsDNSError(err error) bool

	// IsConnectionRefused returns true if the remote end refused the TCP connection.
	IsConnectionRefused(err error) bool

	// IsTimeout returns true if the exchange timed out.
	IsTimeout(err error) bool

	// IsTLSError returns true if the TLS handshake or certificate verification failed.
	IsTLSError(err error) bool

	// IsCanceled returns true if the request context was canceled.
	IsCanceled(err error) bool
}

// TransportInspector implements Inspector using the error chain first and
// falling back to message matching for errors that lost their type.
type TransportInspector struct{}

// NewInspector creates a new TransportInspector.
func NewInspector() Inspector {
	return &TransportInspector{}
}

// IsDNSError checks if the error is a name resolution failure.
func (i *TransportInspector) IsDNSError(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "temporary failure in name resolution")
}

// IsConnectionRefused checks if the error is a refused connection.
func (i *TransportInspector) IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// IsTimeout checks if the error is a timeout.
func (i *TransportInspector) IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsTLSError checks if the error came from the TLS layer.
func (i *TransportInspector) IsTLSError(err error) bool {
	if err == nil {
		return false
	}
	var (
		recordErr   tls.RecordHeaderError
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	if errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "x509:")
}

// IsCanceled checks if the request was canceled by its context.
func (i *TransportInspector) IsCanceled(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// Classify returns the most specific Cause for err. Errors that carry an
// HTTP status (see StatusCoder) are CauseHTTPStatus.
func Classify(err error) Cause {
	if err == nil {
		return ""
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return CauseHTTPStatus
	}

	inspector := NewInspector()
	switch {
	case inspector.IsCanceled(err):
		return CauseCanceled
	case inspector.IsDNSError(err):
		return CauseDNS
	case inspector.IsConnectionRefused(err):
		return CauseConnectionRefused
	case inspector.IsTLSError(err):
		return CauseTLS
	case inspector.IsTimeout(err):
		return CauseTimeout
	default:
		return CauseUnknown
	}
}

// StatusCoder is implemented by errors that describe an HTTP response with
// an error status.
type StatusCoder interface {
	HTTPStatusCode() int
}

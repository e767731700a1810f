package dbclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for taxonomy checks with errors.Is. The typed errors
// below match their class sentinel, so callers can test either the
// concrete type (errors.As) or the class (errors.Is).
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrNotConnected  = errors.New("client not connected")
	ErrQuery         = errors.New("query error")
	ErrTransaction   = errors.New("transaction error")
)

// ConfigurationError reports invalid client configuration. It is
// surfaced before any connection attempt is made.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Message)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingConfigurationError reports a required key absent from the
// environment-derived configuration path.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s is not set", e.Key)
}

func (e *MissingConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnsupportedProviderError is returned when an unknown provider tag is
// requested from the registry.
type UnsupportedProviderError struct {
	Provider  string
	Available []string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q\nAvailable providers: %v\nHint: check the provider tag in testrig.yaml or TESTRIG_DB_PROVIDER", e.Provider, e.Available)
}

func (e *UnsupportedProviderError) Is(target error) bool { return target == ErrConfiguration }

// ConnectionError wraps a driver failure while establishing or
// verifying a connection. It is not retried by this layer.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// NotConnectedError reports an operation attempted before Connect.
type NotConnectedError struct {
	Op string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%s: database connection not established (call Connect first)", e.Op)
}

func (e *NotConnectedError) Is(target error) bool { return target == ErrNotConnected }

// QueryError wraps a backend rejection of SQL text or parameter
// binding. The driver error is preserved verbatim via Unwrap.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// TransactionError wraps a failure of the transaction machinery itself
// (begin, commit, rollback). An error returned by the transaction body
// is never wrapped: it is surfaced unchanged after rollback.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// IsConfigurationError reports whether err is any configuration-class
// failure (invalid, missing, or unsupported provider).
func IsConfigurationError(err error) bool { return errors.Is(err, ErrConfiguration) }

// IsConnectionError reports whether err is a connection failure.
func IsConnectionError(err error) bool { return errors.Is(err, ErrConnection) }

// IsNotConnected reports whether err is an operation-before-Connect failure.
func IsNotConnected(err error) bool { return errors.Is(err, ErrNotConnected) }

// IsQueryError reports whether err is a backend statement rejection.
func IsQueryError(err error) bool { return errors.Is(err, ErrQuery) }

// IsTransactionError reports whether err is a transaction machinery failure.
func IsTransactionError(err error) bool { return errors.Is(err, ErrTransaction) }

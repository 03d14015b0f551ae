package errors

import (
	"errors"

	pkgerrors "github.com/Conte777/NewsFlow/services/account-checker/pkg/errors"
)

var (
	// Transport-level conditions returned by deps.Session implementations
	ErrNotConnected    = errors.New("not connected to Telegram")
	ErrConnectFailed   = errors.New("connection failed")
	ErrPasswordNeeded  = errors.New("two-factor password required")
	ErrInvalidCode     = errors.New("sign-in code rejected")
	ErrInvalidPassword = errors.New("two-factor password rejected")
	ErrSignUpRequired  = errors.New("phone number is not registered")
	ErrPeerNotFound    = errors.New("verification peer not found")
	ErrNoReply         = errors.New("verification peer did not reply")
	ErrInvalidSession  = errors.New("invalid session token")

	// Record storage
	ErrRecordBusy      = errors.New("record is being processed by another batch")
	ErrMalformedRecord = errors.New("malformed account record")

	// API-facing errors
	ErrBatchNotFound  = pkgerrors.NewNotFoundError("batch not found")
	ErrEmptyBatch     = pkgerrors.NewValidationError("no account records found")
	ErrInvalidRequest = pkgerrors.NewValidationError("either paths or dir must be provided")
	ErrShuttingDown   = pkgerrors.NewServiceUnavailableError("service is shutting down")
)

package services

import "fmt"

// ErrorKind groups ledger errors into the four categories handlers map to
// HTTP status codes.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindExternal   ErrorKind = "EXTERNAL"
)

// Error is the typed error every service operation returns across the
// boundary. Code is a stable machine-readable identifier; the context
// fields carry enough detail to render an actionable message.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string

	// Optional context
	SKU       string
	Placement string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newValidationError(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func newNotFoundError(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func newConflictError(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func newExternalError(code string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindExternal, Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// newStorageError wraps an unexpected database failure so no raw storage
// error crosses the service boundary.
func newStorageError(cause error) *Error {
	return &Error{Kind: KindExternal, Code: "STORAGE_ERROR", Message: "storage operation failed", cause: cause}
}

// Stable error codes used across the services.
const (
	CodeInventoryNotFound    = "INVENTORY_NOT_FOUND"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeLocationNotFound     = "LOCATION_NOT_FOUND"
	CodePlacementNotFound    = "PLACEMENT_NOT_FOUND"
	CodeBatchNotFound        = "BATCH_NOT_FOUND"
	CodeProductBarred        = "PRODUCT_BARRED"
	CodeLocationBarred       = "LOCATION_BARRED"
	CodeInvalidMovementType  = "INVALID_MOVEMENT_TYPE"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeAlreadyRequested     = "ALREADY_REQUESTED"
	CodeAlreadyBelowMinimum  = "ALREADY_BELOW_MINIMUM"
	CodeExportFailed         = "EXPORT_FAILED"
	CodeAttachmentFailed     = "ATTACHMENT_FAILED"
	CodeReorderNotFound      = "REORDER_NOT_FOUND"
	CodeReorderUpdateFailed  = "REORDER_UPDATE_FAILED"
)

// TransferErrorKind names the per-line validation failures of a transfer.
type TransferErrorKind string

const (
	TransferErrNonPositiveQuantity TransferErrorKind = "NON_POSITIVE_QUANTITY"
	TransferErrInvalidPlacement    TransferErrorKind = "INVALID_PLACEMENT"
	TransferErrNotDefaultPlacement TransferErrorKind = "NOT_DEFAULT_PLACEMENT"
	TransferErrInvalidBatch        TransferErrorKind = "INVALID_BATCH"
)

// TransferLineError is one validation failure, addressed to the input line
// it belongs to. A transfer call either returns zero of these and commits,
// or returns every failure found and writes nothing.
type TransferLineError struct {
	Index   int
	Kind    TransferErrorKind
	SKU     string
	Message string
}

func (e TransferLineError) Error() string {
	return fmt.Sprintf("line %d (%s): %s", e.Index, e.SKU, e.Message)
}

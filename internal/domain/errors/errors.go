package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrBadRequest            = errors.New("bad request")
	ErrWalletProviderMissing = errors.New("wallet provider not available")
	ErrWalletNotConnected    = errors.New("wallet not connected")
	ErrWrongNetwork          = errors.New("wallet connected to the wrong network")
	ErrNoStablecoinBalance   = errors.New("no stablecoin balance")
	ErrTransactionFailed     = errors.New("transaction failed")
	ErrTransactionReverted   = errors.New("transaction reverted")
	ErrBusy                  = errors.New("operation already in progress")
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeProviderMissing = "WALLET_PROVIDER_MISSING"
	CodeNotConnected    = "WALLET_NOT_CONNECTED"
	CodeWrongNetwork    = "WRONG_NETWORK"
	CodeNoBalance       = "NO_STABLECOIN_BALANCE"
	CodeTransaction     = "TRANSACTION_FAILED"
	CodeBusy            = "BUSY"
	CodeUpstream        = "UPSTREAM_ERROR"
)

// Messages shown to the user verbatim.
const (
	MsgInstallWallet    = "Please install a wallet provider (e.g. MetaMask) to continue."
	MsgConnectWallet    = "Connect your wallet to continue."
	MsgNoStablecoin     = "You don't have any USDC tokens. Please get some test USDC first."
	MsgOperationPending = "Another operation is already in progress. Please wait."
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrBusy)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// ProviderMissing is the blocking instructional error raised when no wallet is injected.
func ProviderMissing() *AppError {
	return NewAppError(http.StatusPreconditionFailed, CodeProviderMissing, MsgInstallWallet, ErrWalletProviderMissing)
}

func NotConnected() *AppError {
	return NewAppError(http.StatusPreconditionFailed, CodeNotConnected, MsgConnectWallet, ErrWalletNotConnected)
}

// WrongNetwork asks the user to switch the wallet to the named network.
func WrongNetwork(networkName string) *AppError {
	return NewAppError(http.StatusPreconditionRequired, CodeWrongNetwork,
		"Please switch to "+networkName+" to continue.", ErrWrongNetwork)
}

func Busy() *AppError {
	return NewAppError(http.StatusConflict, CodeBusy, MsgOperationPending, ErrBusy)
}

func NoStablecoinBalance() *AppError {
	return NewAppError(http.StatusPaymentRequired, CodeNoBalance, MsgNoStablecoin, ErrNoStablecoinBalance)
}

// TransactionFailed wraps a failed write with the message shown to the user.
func TransactionFailed(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeTransaction, message, err)
}

// UpstreamFailed reports a chain read the caller explicitly asked for.
func UpstreamFailed(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, CodeUpstream, message, err)
}

package auctionhouse

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/util"
)

// ErrorCode is the numeric failure designator stored in transaction records.
type ErrorCode uint32

const (
	Success ErrorCode = 0

	AlreadyExists ErrorCode = 6000 + iota - 1
	AlreadyOpen
	NotOpen
	InvalidTradeState
	InsufficientEscrow
	Unauthorized
	Overflow
	UnknownErrorCode
)

var errorCodeNames = map[ErrorCode]string{
	Success:            "Success",
	AlreadyExists:      "AlreadyExists",
	AlreadyOpen:        "AlreadyOpen",
	NotOpen:            "NotOpen",
	InvalidTradeState:  "InvalidTradeState",
	InsufficientEscrow: "InsufficientEscrow",
	Unauthorized:       "Unauthorized",
	Overflow:           "Overflow",
	UnknownErrorCode:   "UnknownErrorCode",
}

/*
DecodeErrorCode turns a raw status value into ErrorCode. Values not in the
code table decode as UnknownErrorCode.
*/
func DecodeErrorCode(v uint32) ErrorCode {
	if _, ok := errorCodeNames[ErrorCode(v)]; ok {
		return ErrorCode(v)
	}
	return UnknownErrorCode
}

// ErrorCodeByName looks up the code by its name, e.g. "NotOpen".
func ErrorCodeByName(name string) (ErrorCode, bool) {
	for code, n := range errorCodeNames {
		if n == name {
			return code, true
		}
	}
	return UnknownErrorCode, false
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UnknownErrorCode(%d)", uint32(c))
}

// Error is a failed precondition of an auction house instruction.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

// sentinels for errors.Is, matching is done by code
var (
	ErrAlreadyExists      = &Error{Code: AlreadyExists}
	ErrAlreadyOpen        = &Error{Code: AlreadyOpen}
	ErrNotOpen            = &Error{Code: NotOpen}
	ErrInvalidTradeState  = &Error{Code: InvalidTradeState}
	ErrInsufficientEscrow = &Error{Code: InsufficientEscrow}
	ErrUnauthorized       = &Error{Code: Unauthorized}
	ErrOverflow           = &Error{Code: Overflow}
)

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return e.Code.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) ErrorCode() uint32 { return uint32(e.Code) }

/*
CodeOf returns the code of the error: Success for nil, UnknownErrorCode for
errors which do not carry a code.
*/
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	if code, ok := txsystem.ErrorCodeOf(err); ok {
		return DecodeErrorCode(code)
	}
	return UnknownErrorCode
}

/*
mapError translates collaborator (ledger, token program) failures into the
auction house taxonomy. Errors which already carry a code are returned as is.
*/
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var ahErr *Error
	switch {
	case errors.As(err, &ahErr):
		return err
	case errors.Is(err, txsystem.ErrMissingSignature), errors.Is(err, tokens.ErrNotAuthorized):
		return wrapError(Unauthorized, err, "")
	case errors.Is(err, state.ErrAccountInUse):
		return wrapError(AlreadyOpen, err, "")
	case errors.Is(err, util.ErrOverflow):
		return wrapError(Overflow, err, "")
	case errors.Is(err, state.ErrInsufficientFunds):
		return wrapError(InsufficientEscrow, err, "")
	case errors.Is(err, tokens.ErrInsufficientTokens), errors.Is(err, tokens.ErrMintMismatch), errors.Is(err, tokens.ErrInvalidAccountData):
		return wrapError(InvalidTradeState, err, "")
	}
	return err
}

package usecase

import (
	"errors"
	"net/http"
)

// クライアントが分岐に使うcode
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	CodeEmptyCart          = "EMPTY_CART"
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidRating      = "INVALID_RATING"
	CodeReviewExists       = "REVIEW_ALREADY_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

const msgInternal = "Error interno del servidor"

// HandlerがそのままHTTPレスポンスにできるエラー
type HTTPError struct {
	Status  int
	Code    string
	Message string
	// 500のときの原因（レスポンスには出さずログに出す）
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func NewCodedError(status int, code string, message string) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message}
}

func internalError(err error) *HTTPError {
	return &HTTPError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msgInternal, Err: err}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// HTTPErrorでなければ500に包む
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return internalError(err)
}

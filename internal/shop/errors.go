package shop

import (
	"errors"
	"fmt"

	"bookstore/internal/apiclient"
)

var (
	ErrPaymentIncomplete = errors.New("shop: payment information is incomplete")
	ErrEmptyCart         = errors.New("shop: cart is empty")
	ErrMergeNotPending   = errors.New("shop: no login merge is pending")
	ErrNotGuest          = errors.New("shop: session is already authenticated")
	ErrNotPriced         = errors.New("shop: checkout has not been priced")
	ErrNoRemoteCart      = errors.New("shop: login needs a remote cart store")
)

// ローカル保存の読み書き失敗。ゲストでは握りつぶす
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("shop: local storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// セッション切れ。呼び出し側はログインし直させる
type UnauthorizedError struct {
	Err error
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("shop: unauthorized: %v", e.Err)
}

func (e *UnauthorizedError) Unwrap() error { return e.Err }

// ログイン中のカート操作の失敗
type CartOperationError struct {
	Op           string
	Unauthorized bool
	Err          error
}

func (e *CartOperationError) Error() string {
	if e.Unauthorized {
		return fmt.Sprintf("shop: cart %s: unauthorized: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("shop: cart %s: %v", e.Op, e.Err)
}

func (e *CartOperationError) Unwrap() error { return e.Err }

type PricingUnavailableError struct {
	Err error
}

func (e *PricingUnavailableError) Error() string {
	return fmt.Sprintf("shop: pricing unavailable: %v", e.Err)
}

func (e *PricingUnavailableError) Unwrap() error { return e.Err }

// 注文送信の失敗。カートは消さない
type CheckoutSubmissionError struct {
	Unauthorized bool
	Err          error
}

func (e *CheckoutSubmissionError) Error() string {
	return fmt.Sprintf("shop: checkout submission failed: %v", e.Err)
}

func (e *CheckoutSubmissionError) Unwrap() error { return e.Err }

// UnauthorizedError / 認可失敗のCartOperationError / 認可失敗のCheckoutSubmissionError
func IsUnauthorized(err error) bool {
	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return true
	}
	var ce *CartOperationError
	if errors.As(err, &ce) {
		return ce.Unauthorized
	}
	var se *CheckoutSubmissionError
	if errors.As(err, &se) {
		return se.Unauthorized
	}
	return false
}

func cartOpError(op string, err error) error {
	return &CartOperationError{Op: op, Unauthorized: apiclient.IsUnauthorized(err), Err: err}
}

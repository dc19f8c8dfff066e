package usecase

import (
	"errors"
	"fmt"

	repo "catalog/internal/repository"
	"catalog/internal/validator"
)

// 認証・権限など、HTTPステータスがそのまま決まるエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 存在しない商品・注文への参照
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func newNotFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

func AsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	ok := errors.As(err, &nf)
	return nf, ok
}

// ストアが書き込みを中断した（リトライはしない）
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction aborted: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func AsTransactionError(err error) (*TransactionError, bool) {
	var te *TransactionError
	ok := errors.As(err, &te)
	return te, ok
}

// 制約違反によるロールバックか
func (e *TransactionError) IsConstraint() bool {
	return errors.Is(e.Err, repo.ErrConstraint)
}

// Tx内で返ったエラーを3種類にそろえる。分類済みならそのまま返す
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := validator.AsValidationError(err); ok {
		return err
	}
	if _, ok := AsNotFoundError(err); ok {
		return err
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	if _, ok := AsTransactionError(err); ok {
		return err
	}
	return &TransactionError{Op: op, Err: err}
}

package repository

import (
	"context"
	"errors"

	"catalog/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	//emailが重複ならErrConstraint
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	//発行済みトークンを全部無効にする。戻り値は新しいバージョン
	IncrementTokenVersion(ctx context.Context, userID int64) (int, error)
}

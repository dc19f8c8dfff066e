package repository

import (
	"context"
	"errors"
	"strings"

	"catalog/internal/domain/model"
	domainrepo "catalog/internal/repository"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// emailが重複ならErrConstraint
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

// emailは小文字で保存しているが、大文字混じりで来ても引けるようにする
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(ctx, r.db.Where("id = ?", id))
}

func (r *userGormRepository) first(ctx context.Context, q *gorm.DB) (*model.User, error) {
	var u model.User
	if err := q.WithContext(ctx).First(&u).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, domainrepo.ErrNotFound) {
			return nil, domainrepo.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// プロフィール系の列だけ更新する。
// token_versionはIncrementTokenVersionでしか動かさない（ログインと失効が競合しても戻らない）
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":          user.Name,
		"role":          user.Role,
		"is_active":     user.IsActive,
		"last_login_at": user.LastLoginAt,
	})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}

// UPDATE ... SET token_version = token_version + 1 で競合しても取りこぼさない
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id int64) (int, error) {
	var tv int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", id).
			UpdateColumn("token_version", gorm.Expr("token_version + ?", 1))
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return domainrepo.ErrUserNotFound
		}
		return tx.Model(&model.User{}).Where("id = ?", id).Pluck("token_version", &tv).Error
	})
	if err != nil {
		return 0, err
	}
	return tv, nil
}

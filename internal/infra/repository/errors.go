package repository

import (
	"errors"
	"fmt"

	repo "catalog/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQLのSQLSTATE
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// gorm/ドライバのエラーをrepositoryのエラーにそろえる
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return fmt.Errorf("%w: %v", repo.ErrConstraint, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgUniqueViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s (%s)", repo.ErrConstraint, pgErr.Message, pgErr.ConstraintName)
		}
	}
	return err
}

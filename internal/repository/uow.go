package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork runs an account mutation and its audit record inside a single
// transaction: both writes commit together or neither is persisted.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(users UserRepository, activities ActivityLogRepository) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork constructs a transaction-scoped unit of work over the given database.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(users UserRepository, activities ActivityLogRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUserRepository(tx), NewActivityLogRepository(tx))
	})
}

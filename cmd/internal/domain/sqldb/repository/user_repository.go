package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"healtogether/cmd/internal/domain/entity"
	"healtogether/cmd/internal/domain/sqldb"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *DefaultUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll lists users ordered by name. An empty role matches every role.
func (u *DefaultUserRepository) FindAll(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	var users []*entity.User
	query := u.db.WithContext(ctx).Order("name asc")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Find(&users).Error
	return users, err
}

// Save inserts or updates the user. A taken email yields entity.ErrDuplicate.
func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	err := u.db.WithContext(ctx).Save(user).Error
	if sqldb.IsUniqueViolation(err) {
		return entity.ErrDuplicate
	}
	return err
}

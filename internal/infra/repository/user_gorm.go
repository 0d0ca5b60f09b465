package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pratyek/grocery-app/internal/domain/model"
	domainrepo "github.com/pratyek/grocery-app/internal/repository"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return mapError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userGormRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User

	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

package repository

import (
	"context"
	"errors"

	"recipebox/internal/cache"
	"recipebox/internal/models"
	"recipebox/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UsernameTakenMessage is reported when signup collides with an existing username.
const UsernameTakenMessage = "Username already exists"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	rdb redis.Cmdable
}

// NewUserRepository returns a new UserRepository implementation. rdb may be
// nil, which disables caching.
func NewUserRepository(db *gorm.DB, rdb redis.Cmdable) UserRepository {
	return &userRepository{db: db, rdb: rdb}
}

// GetByID returns the public profile of a user; the password hash is never
// loaded. Results are cached for cache.UserTTL.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, r.rdb, cache.UserKey(id), &user, cache.UserTTL, func() error {
		defer observability.TrackQuery("select", "users")()
		if err := r.db.WithContext(ctx).Omit("password_hash").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns the full user, password hash included, or nil when
// no user has that name.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(UsernameTakenMessage)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the user and every recipe it owns.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "users")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return err
		}
		return tx.Select("Recipes").Delete(&user).Error
	})
	if err != nil {
		return wrap(err)
	}

	_ = cache.InvalidateUser(ctx, r.rdb, id)
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).Omit("password_hash").Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

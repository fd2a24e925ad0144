package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/models"
)

// ParentRepository provides access to guardian profiles. Email resolution
// lives in the authorization directory, not here.
type ParentRepository interface {
	GetByID(ctx context.Context, id uint) (models.ParentProfile, error)
	Create(ctx context.Context, parent *models.ParentProfile) error
}

type parentRepository struct {
	db *gorm.DB
}

// NewParentRepository constructs a parent profile repository.
func NewParentRepository(db *gorm.DB) ParentRepository {
	return &parentRepository{db: db}
}

func (r *parentRepository) GetByID(ctx context.Context, id uint) (models.ParentProfile, error) {
	var parent models.ParentProfile
	if err := r.db.WithContext(ctx).First(&parent, id).Error; err != nil {
		return models.ParentProfile{}, err
	}
	return parent, nil
}

func (r *parentRepository) Create(ctx context.Context, parent *models.ParentProfile) error {
	return r.db.WithContext(ctx).Create(parent).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/models"
)

// BookingRepository provides access to class sessions and their bookings.
type BookingRepository interface {
	GetClass(ctx context.Context, id uint) (models.ClassSession, error)
	ListByClass(ctx context.Context, classID uint) ([]models.ClassBooking, error)
	CreateClass(ctx context.Context, class *models.ClassSession) error
	CreateBooking(ctx context.Context, booking *models.ClassBooking) error
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository constructs a booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetClass(ctx context.Context, id uint) (models.ClassSession, error) {
	var class models.ClassSession
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.ClassSession{}, err
	}
	return class, nil
}

func (r *bookingRepository) ListByClass(ctx context.Context, classID uint) ([]models.ClassBooking, error) {
	var bookings []models.ClassBooking
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("class_id = ?", classID).
		Order("id ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) CreateClass(ctx context.Context, class *models.ClassSession) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *bookingRepository) CreateBooking(ctx context.Context, booking *models.ClassBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

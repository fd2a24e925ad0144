package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/internal/progression"
)

// StudentRepository provides access to student records and their
// progression counters.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	// AddXP atomically increments the student's XP and re-derives the level
	// inside a single UPDATE, so concurrent completions for the same student
	// cannot lose an increment to a read-then-write race.
	AddXP(ctx context.Context, id uint, delta int) (models.Student, error)
	UpdateStatus(ctx context.Context, id uint, status string) (models.Student, error)
	TouchLastSeen(ctx context.Context, id uint, seenAt time.Time) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CurrentLevel == 0 {
		student.CurrentLevel = progression.LevelForXP(student.TotalXP)
	}
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) AddXP(ctx context.Context, id uint, delta int) (models.Student, error) {
	// total_xp never goes negative, so the derived expression is always >= 1
	// and no GREATEST/MAX clamp is needed in SQL.
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"total_xp":      gorm.Expr("total_xp + ?", delta),
			"current_level": gorm.Expr("(total_xp + ?) / ? + 1", delta, progression.XPPerLevel),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return models.Student{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Student{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *studentRepository) UpdateStatus(ctx context.Context, id uint, status string) (models.Student, error) {
	result := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.Student{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Student{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *studentRepository) TouchLastSeen(ctx context.Context, id uint, seenAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", id).
		Update("last_seen_at", seenAt.UTC()).Error
}

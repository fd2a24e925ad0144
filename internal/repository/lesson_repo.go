package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/models"
)

// ErrCompletionExists indicates the student already completed the lesson.
var ErrCompletionExists = errors.New("lesson completion already recorded")

// LessonRepository provides access to lessons and the completion ledger.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	// RecordCompletion appends to the completion ledger, returning
	// ErrCompletionExists when the (student, lesson) pair is already present.
	RecordCompletion(ctx context.Context, completion *models.LessonCompletion) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository constructs a lesson repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}
	return lesson, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) RecordCompletion(ctx context.Context, completion *models.LessonCompletion) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LessonCompletion{}).
		Where("student_id = ? AND lesson_id = ?", completion.StudentID, completion.LessonID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCompletionExists
	}

	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		// The unique index is the backstop when two completions race past
		// the existence check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCompletionExists
		}
		return err
	}
	return nil
}

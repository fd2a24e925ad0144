package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/edupulse/engage-api/internal/authz"
	"github.com/edupulse/engage-api/internal/models"
)

// directory adapts the student and parent tables to the lookup interface the
// authorization resolver expects.
type directory struct {
	db *gorm.DB
}

// NewDirectory constructs the linkage directory backed by GORM.
func NewDirectory(db *gorm.DB) authz.Directory {
	return &directory{db: db}
}

func (d *directory) StudentLinkage(ctx context.Context, studentID uint) (authz.Linkage, error) {
	var student models.Student
	if err := d.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Linkage{}, fmt.Errorf("%w: student %d", authz.ErrLinkageNotFound, studentID)
		}
		return authz.Linkage{}, err
	}

	return authz.Linkage{
		StudentEmail: strings.ToLower(student.Email),
		ParentEmail:  strings.ToLower(student.ParentEmail),
		GuardianID:   student.GuardianID,
	}, nil
}

func (d *directory) ParentIDByEmail(ctx context.Context, email string) (uint, error) {
	var parent models.ParentProfile
	err := d.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return parent.ID, nil
}

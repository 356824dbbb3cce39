package repository

import (
	"context"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/gorm"
)

type CourseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.GolfCourse, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (*models.GolfCourse, error) {
	var course models.GolfCourse
	err := r.db.WithContext(ctx).
		Preload("Config").
		Preload("Config.Overrides").
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

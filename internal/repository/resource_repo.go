package repository

import (
	"context"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/gorm"
)

type ResourceRepository interface {
	FindCart(ctx context.Context, id uint) (*models.GolfCart, error)
	FindCaddy(ctx context.Context, id uint) (*models.Caddy, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) FindCart(ctx context.Context, id uint) (*models.GolfCart, error) {
	var cart models.GolfCart
	if err := r.db.WithContext(ctx).First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *resourceRepository) FindCaddy(ctx context.Context, id uint) (*models.Caddy, error) {
	var caddy models.Caddy
	if err := r.db.WithContext(ctx).First(&caddy, id).Error; err != nil {
		return nil, err
	}
	return &caddy, nil
}

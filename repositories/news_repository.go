package repositories

import (
	"context"

	"gamedominate/apperrors"
	"gamedominate/models"

	"gorm.io/gorm"
)

type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	FindByID(ctx context.Context, id uint) (*models.News, error)
	FindAll(ctx context.Context) ([]models.News, error)
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id uint) error
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Create(news).Error
}

func (r *newsRepository) FindByID(ctx context.Context, id uint) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).First(&news, id).Error; err != nil {
		return nil, translate(err)
	}
	return &news, nil
}

func (r *newsRepository) FindAll(ctx context.Context) ([]models.News, error) {
	var items []models.News
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&items).Error
	return items, err
}

func (r *newsRepository) Update(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Save(news).Error
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.News{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"

	"gamedominate/apperrors"
	"gamedominate/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.GameReview) error
	FindByGame(ctx context.Context, gameID uint) ([]models.GameReview, error)
	// FindByID only matches a review that belongs to gameID.
	FindByID(ctx context.Context, gameID, id uint) (*models.GameReview, error)
	Update(ctx context.Context, review *models.GameReview) error
	Delete(ctx context.Context, gameID, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.GameReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(review, review.ID).Error
}

func (r *reviewRepository) FindByGame(ctx context.Context, gameID uint) ([]models.GameReview, error) {
	reviews := make([]models.GameReview, 0)
	err := r.db.WithContext(ctx).Preload("User").Where("game_id = ?", gameID).Order("id").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) FindByID(ctx context.Context, gameID, id uint) (*models.GameReview, error) {
	var review models.GameReview
	err := r.db.WithContext(ctx).Preload("User").Where("game_id = ?", gameID).First(&review, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.GameReview) error {
	err := r.db.WithContext(ctx).Model(review).Select("Rating", "Comment").Updates(review).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(review, review.ID).Error
}

func (r *reviewRepository) Delete(ctx context.Context, gameID, id uint) error {
	res := r.db.WithContext(ctx).Where("game_id = ?", gameID).Delete(&models.GameReview{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"

	"gamedominate/apperrors"
	"gamedominate/models"

	"gorm.io/gorm"
)

// CommunityRepository stores community posts and their two-level comment threads.
type CommunityRepository interface {
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	FindPost(ctx context.Context, id uint) (*models.CommunityPost, error)
	// FindPostWithThreads loads the post, its top-level comments and their replies.
	FindPostWithThreads(ctx context.Context, id uint) (*models.CommunityPost, error)
	FindAllPosts(ctx context.Context) ([]models.CommunityPost, error)
	UpdatePost(ctx context.Context, post *models.CommunityPost) error
	DeletePost(ctx context.Context, id uint) error

	CreateComment(ctx context.Context, comment *models.Comment) error
	FindComment(ctx context.Context, id uint) (*models.Comment, error)
	UpdateCommentContent(ctx context.Context, id uint, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	// ListThreads returns the top-level comments of a post with their replies nested.
	ListThreads(ctx context.Context, postID uint) ([]models.Comment, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(post, post.ID).Error
}

func (r *communityRepository) FindPost(ctx context.Context, id uint) (*models.CommunityPost, error) {
	var post models.CommunityPost
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *communityRepository) FindPostWithThreads(ctx context.Context, id uint) (*models.CommunityPost, error) {
	post, err := r.FindPost(ctx, id)
	if err != nil {
		return nil, err
	}
	threads, err := r.ListThreads(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = threads
	return post, nil
}

func (r *communityRepository) FindAllPosts(ctx context.Context) ([]models.CommunityPost, error) {
	var posts []models.CommunityPost
	err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Find(&posts).Error
	return posts, err
}

func (r *communityRepository) UpdatePost(ctx context.Context, post *models.CommunityPost) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("Title", "Content", "Picture").
		Updates(post).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(post, post.ID).Error
}

// DeletePost removes the post and every comment on it in one transaction.
func (r *communityRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND parent_id IS NOT NULL", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CommunityPost{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error
}

func (r *communityRepository) FindComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *communityRepository) UpdateCommentContent(ctx context.Context, id uint, content string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindComment(ctx, id)
}

// DeleteComment removes a comment. For a top-level comment its replies are
// deleted first, in the same transaction, so no reply is left orphaned.
func (r *communityRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

func (r *communityRepository) ListThreads(ctx context.Context, postID uint) ([]models.Comment, error) {
	threads := make([]models.Comment, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at, id").
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"gamedominate/apperrors"
	"gamedominate/models"
	"gamedominate/repositories"
)

// CommunityService manages posts and their two-level comment threads.
// Ownership of posts and comments is enforced by the route filters; this
// service only checks that ids fit together.
type CommunityService interface {
	ListPosts(ctx context.Context) ([]models.CommunityPost, error)
	GetPost(ctx context.Context, id uint) (*models.CommunityPost, error)
	CreatePost(ctx context.Context, userID uint, input PostInput, picture *multipart.FileHeader) (*models.CommunityPost, error)
	UpdatePost(ctx context.Context, id uint, input PostInput, picture *multipart.FileHeader) (*models.CommunityPost, error)
	DeletePost(ctx context.Context, id uint) error

	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID, userID uint, input CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID uint, input CommentInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID uint) error

	CreateReply(ctx context.Context, postID, userID uint, input ReplyInput) (*models.Comment, error)
	UpdateReply(ctx context.Context, postID, replyID uint, input CommentInput) (*models.Comment, error)
	DeleteReply(ctx context.Context, postID, replyID uint) error
}

type PostInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type ReplyInput struct {
	ParentID uint   `json:"parentId" validate:"required"`
	Content  string `json:"content" validate:"required,max=5000"`
}

type communityService struct {
	repo    repositories.CommunityRepository
	uploads Uploader
}

var _ CommunityService = (*communityService)(nil)

func NewCommunityService(repo repositories.CommunityRepository, uploads Uploader) CommunityService {
	return &communityService{repo: repo, uploads: uploads}
}

func (s *communityService) ListPosts(ctx context.Context) ([]models.CommunityPost, error) {
	posts, err := s.repo.FindAllPosts(ctx)
	if err != nil {
		return nil, apperrors.Internal("listing posts", err)
	}
	return nonNil(posts), nil
}

func (s *communityService) GetPost(ctx context.Context, id uint) (*models.CommunityPost, error) {
	post, err := s.repo.FindPostWithThreads(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading post", "Community post with ID : %d not found", id)
	}
	return post, nil
}

func (s *communityService) CreatePost(ctx context.Context, userID uint, input PostInput, picture *multipart.FileHeader) (*models.CommunityPost, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	post := &models.CommunityPost{
		UserID:  userID,
		Title:   input.Title,
		Content: input.Content,
		Picture: ref,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal("creating post", err)
	}
	return post, nil
}

func (s *communityService) UpdatePost(ctx context.Context, id uint, input PostInput, picture *multipart.FileHeader) (*models.CommunityPost, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	if ref != nil {
		post.Picture = ref
	}
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, apperrors.Internal("updating post", err)
	}
	return post, nil
}

func (s *communityService) DeletePost(ctx context.Context, id uint) error {
	return storeError(s.repo.DeletePost(ctx, id), "deleting post", "Community post with ID : %d not found", id)
}

func (s *communityService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}
	threads, err := s.repo.ListThreads(ctx, postID)
	if err != nil {
		return nil, apperrors.Internal("listing comments", err)
	}
	return threads, nil
}

func (s *communityService) CreateComment(ctx context.Context, postID, userID uint, input CommentInput) (*models.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: userID, Content: input.Content}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, apperrors.Internal("creating comment", err)
	}
	return comment, nil
}

func (s *communityService) UpdateComment(ctx context.Context, postID, commentID uint, input CommentInput) (*models.Comment, error) {
	return s.updateContent(ctx, postID, commentID, false, input)
}

func (s *communityService) DeleteComment(ctx context.Context, postID, commentID uint) error {
	return s.delete(ctx, postID, commentID, false)
}

// CreateReply attaches a reply to a top-level comment of the same post.
// Replies to replies are rejected so threads stay two levels deep.
func (s *communityService) CreateReply(ctx context.Context, postID, userID uint, input ReplyInput) (*models.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.findPost(ctx, postID); err != nil {
		return nil, err
	}

	parent, err := s.repo.FindComment(ctx, input.ParentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.BadRequest("parent comment %d does not exist", input.ParentID)
	}
	if err != nil {
		return nil, apperrors.Internal("loading parent comment", err)
	}
	if parent.PostID != postID {
		return nil, apperrors.BadRequest("parent comment %d belongs to another post", input.ParentID)
	}
	if parent.IsReply() {
		return nil, apperrors.BadRequest("cannot reply to a reply")
	}

	reply := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  input.Content,
		ParentID: &parent.ID,
	}
	if err := s.repo.CreateComment(ctx, reply); err != nil {
		return nil, apperrors.Internal("creating reply", err)
	}
	return reply, nil
}

func (s *communityService) UpdateReply(ctx context.Context, postID, replyID uint, input CommentInput) (*models.Comment, error) {
	return s.updateContent(ctx, postID, replyID, true, input)
}

func (s *communityService) DeleteReply(ctx context.Context, postID, replyID uint) error {
	return s.delete(ctx, postID, replyID, true)
}

func (s *communityService) findPost(ctx context.Context, id uint) (*models.CommunityPost, error) {
	post, err := s.repo.FindPost(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading post", "Community post with ID : %d not found", id)
	}
	return post, nil
}

// findThreadItem loads a comment and checks that it sits on postID and is of
// the requested kind. A mismatch is reported as not found.
func (s *communityService) findThreadItem(ctx context.Context, postID, id uint, reply bool) (*models.Comment, error) {
	label := "Comment"
	if reply {
		label = "Reply"
	}
	comment, err := s.repo.FindComment(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading comment", "%s not found", label)
	}
	if comment.PostID != postID || comment.IsReply() != reply {
		return nil, apperrors.NotFound("%s not found", label)
	}
	return comment, nil
}

func (s *communityService) updateContent(ctx context.Context, postID, id uint, reply bool, input CommentInput) (*models.Comment, error) {
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.findThreadItem(ctx, postID, id, reply); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateCommentContent(ctx, id, input.Content)
	if err != nil {
		return nil, storeError(err, "updating comment", "Comment not found")
	}
	return updated, nil
}

func (s *communityService) delete(ctx context.Context, postID, id uint, reply bool) error {
	if _, err := s.findThreadItem(ctx, postID, id, reply); err != nil {
		return err
	}
	return storeError(s.repo.DeleteComment(ctx, id), "deleting comment", "Comment not found")
}

package services

import (
	"context"
	"mime/multipart"
	"strings"

	"gamedominate/apperrors"
	"gamedominate/models"
	"gamedominate/repositories"
)

type NewsService interface {
	List(ctx context.Context) ([]models.News, error)
	Get(ctx context.Context, id uint) (*models.News, error)
	Create(ctx context.Context, input NewsInput, picture *multipart.FileHeader) (*models.News, error)
	Update(ctx context.Context, id uint, input NewsInput, picture *multipart.FileHeader) (*models.News, error)
	Delete(ctx context.Context, id uint) error
}

type NewsInput struct {
	Headline string `json:"headline" validate:"required,max=255"`
	Content  string `json:"content"`
}

type newsService struct {
	repo    repositories.NewsRepository
	uploads Uploader
}

var _ NewsService = (*newsService)(nil)

func NewNewsService(repo repositories.NewsRepository, uploads Uploader) NewsService {
	return &newsService{repo: repo, uploads: uploads}
}

func (s *newsService) List(ctx context.Context) ([]models.News, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("listing news", err)
	}
	return nonNil(items), nil
}

func (s *newsService) Get(ctx context.Context, id uint) (*models.News, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading news", "News item with ID : %d not found", id)
	}
	return item, nil
}

func (s *newsService) Create(ctx context.Context, input NewsInput, picture *multipart.FileHeader) (*models.News, error) {
	input.Headline = strings.TrimSpace(input.Headline)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	item := &models.News{Headline: input.Headline, Content: input.Content, Picture: ref}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperrors.Internal("creating news", err)
	}
	return item, nil
}

func (s *newsService) Update(ctx context.Context, id uint, input NewsInput, picture *multipart.FileHeader) (*models.News, error) {
	input.Headline = strings.TrimSpace(input.Headline)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	item.Headline = input.Headline
	item.Content = input.Content
	if ref != nil {
		item.Picture = ref
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, apperrors.Internal("updating news", err)
	}
	return item, nil
}

func (s *newsService) Delete(ctx context.Context, id uint) error {
	return storeError(s.repo.Delete(ctx, id), "deleting news", "News item with ID : %d not found", id)
}

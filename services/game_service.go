package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"gamedominate/apperrors"
	"gamedominate/models"
	"gamedominate/repositories"
)

type GameService interface {
	List(ctx context.Context) ([]models.Game, error)
	Get(ctx context.Context, id uint) (*models.Game, error)
	// SearchBy matches a scalar column exactly.
	SearchBy(ctx context.Context, field repositories.GameField, value string) ([]models.Game, error)
	// SearchContaining matches games listing value in genre or platform.
	SearchContaining(ctx context.Context, field repositories.GameListField, value string) ([]models.Game, error)
	Create(ctx context.Context, input GameInput, picture *multipart.FileHeader) (*models.Game, error)
	Update(ctx context.Context, id uint, input GameInput, picture *multipart.FileHeader) (*models.Game, error)
	Delete(ctx context.Context, id uint) error

	ListReviews(ctx context.Context, gameID uint) ([]models.GameReview, error)
	GetReview(ctx context.Context, gameID, reviewID uint) (*models.GameReview, error)
	CreateReview(ctx context.Context, gameID, userID uint, input ReviewInput) (*models.GameReview, error)
	UpdateReview(ctx context.Context, gameID, reviewID uint, input ReviewInput) (*models.GameReview, error)
	DeleteReview(ctx context.Context, gameID, reviewID uint) error
}

type GameInput struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Genre       []string   `json:"genre" validate:"dive,required"`
	Platform    []string   `json:"platform" validate:"dive,required"`
	Developer   string     `json:"developer" validate:"max=255"`
	Publisher   string     `json:"publisher" validate:"max=255"`
	Detail      string     `json:"detail"`
	Rating      float64    `json:"rating" validate:"gte=0,lte=10"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type gameService struct {
	games   repositories.GameRepository
	reviews repositories.ReviewRepository
	uploads Uploader
}

var _ GameService = (*gameService)(nil)

func NewGameService(games repositories.GameRepository, reviews repositories.ReviewRepository, uploads Uploader) GameService {
	return &gameService{games: games, reviews: reviews, uploads: uploads}
}

func (s *gameService) List(ctx context.Context) ([]models.Game, error) {
	games, err := s.games.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("listing games", err)
	}
	return nonNil(games), nil
}

func (s *gameService) Get(ctx context.Context, id uint) (*models.Game, error) {
	game, err := s.games.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading game", "Game ID : %d not found", id)
	}
	return game, nil
}

func (s *gameService) SearchBy(ctx context.Context, field repositories.GameField, value string) ([]models.Game, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperrors.BadRequest("%s query parameter is required", capitalize(string(field)))
	}
	games, err := s.games.FindBy(ctx, field, value)
	if err != nil {
		return nil, apperrors.Internal("searching games", err)
	}
	return nonNil(games), nil
}

func (s *gameService) SearchContaining(ctx context.Context, field repositories.GameListField, value string) ([]models.Game, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperrors.BadRequest("%s query parameter is required", capitalize(string(field)))
	}
	games, err := s.games.FindContaining(ctx, field, value)
	if err != nil {
		return nil, apperrors.Internal("searching games", err)
	}
	// Platform searches have always answered an empty result with 404.
	if len(games) == 0 && field == repositories.GameListPlatform {
		return nil, apperrors.NotFound("No games found for platform : %s", value)
	}
	return nonNil(games), nil
}

func (s *gameService) Create(ctx context.Context, input GameInput, picture *multipart.FileHeader) (*models.Game, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	game := &models.Game{Picture: ref}
	input.apply(game)
	if err := s.games.Create(ctx, game); err != nil {
		return nil, apperrors.Internal("creating game", err)
	}
	return game, nil
}

// Update replaces every field; the picture is kept unless a new one is sent.
func (s *gameService) Update(ctx context.Context, id uint, input GameInput, picture *multipart.FileHeader) (*models.Game, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	game, err := s.games.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loading game", "Game ID : %d not found", id)
	}
	ref, err := s.uploads.save(ctx, "picture", picture)
	if err != nil {
		return nil, err
	}

	input.apply(game)
	if ref != nil {
		game.Picture = ref
	}
	if err := s.games.Update(ctx, game); err != nil {
		return nil, apperrors.Internal("updating game", err)
	}
	return game, nil
}

func (s *gameService) Delete(ctx context.Context, id uint) error {
	return storeError(s.games.Delete(ctx, id), "deleting game", "Game ID : %d not found", id)
}

func (s *gameService) ListReviews(ctx context.Context, gameID uint) ([]models.GameReview, error) {
	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindByGame(ctx, gameID)
	if err != nil {
		return nil, apperrors.Internal("listing reviews", err)
	}
	return reviews, nil
}

func (s *gameService) GetReview(ctx context.Context, gameID, reviewID uint) (*models.GameReview, error) {
	review, err := s.reviews.FindByID(ctx, gameID, reviewID)
	if err != nil {
		return nil, storeError(err, "loading review", "Review ID : %d not found", reviewID)
	}
	return review, nil
}

func (s *gameService) CreateReview(ctx context.Context, gameID, userID uint, input ReviewInput) (*models.GameReview, error) {
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}

	review := &models.GameReview{
		GameID:  gameID,
		UserID:  userID,
		Rating:  input.Rating,
		Comment: input.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, apperrors.Internal("creating review", err)
	}
	return review, nil
}

func (s *gameService) UpdateReview(ctx context.Context, gameID, reviewID uint, input ReviewInput) (*models.GameReview, error) {
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	review, err := s.GetReview(ctx, gameID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, apperrors.Internal("updating review", err)
	}
	return review, nil
}

func (s *gameService) DeleteReview(ctx context.Context, gameID, reviewID uint) error {
	return storeError(s.reviews.Delete(ctx, gameID, reviewID), "deleting review", "Review ID : %d not found", reviewID)
}

func (in GameInput) apply(game *models.Game) {
	game.Title = in.Title
	game.Genre = nonNil(in.Genre)
	game.Platform = nonNil(in.Platform)
	game.Developer = strings.TrimSpace(in.Developer)
	game.Publisher = strings.TrimSpace(in.Publisher)
	game.Detail = in.Detail
	game.Rating = in.Rating
	game.ReleaseDate = in.ReleaseDate
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

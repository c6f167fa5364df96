package repositories

import (
	"context"
	"encoding/json"
	"strings"

	"gamedominate/apperrors"
	"gamedominate/models"

	"gorm.io/gorm"
)

// GameField names a searchable scalar column of the catalog.
type GameField string

const (
	GameFieldTitle     GameField = "title"
	GameFieldDeveloper GameField = "developer"
	GameFieldPublisher GameField = "publisher"
)

// GameListField names a JSON list column of the catalog.
type GameListField string

const (
	GameListGenre    GameListField = "genre"
	GameListPlatform GameListField = "platform"
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	FindByID(ctx context.Context, id uint) (*models.Game, error)
	FindAll(ctx context.Context) ([]models.Game, error)
	// FindBy matches field exactly.
	FindBy(ctx context.Context, field GameField, value string) ([]models.Game, error)
	// FindContaining matches games whose list field has value as an element.
	FindContaining(ctx context.Context, field GameListField, value string) ([]models.Game, error)
	Update(ctx context.Context, game *models.Game) error
	Delete(ctx context.Context, id uint) error
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepository) FindByID(ctx context.Context, id uint) (*models.Game, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Reviews.User").
		First(&game, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &game, nil
}

func (r *gameRepository) FindAll(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).Order("id").Find(&games).Error
	return games, err
}

func (r *gameRepository) FindBy(ctx context.Context, field GameField, value string) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).Where(map[string]any{string(field): value}).Order("id").Find(&games).Error
	return games, err
}

// likeEscaper makes LIKE wildcards in a search value literal. '!' is used as
// the escape character since a backslash needs different quoting in MySQL and SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Lists are stored as JSON arrays, so an element match is a LIKE on its
// JSON-encoded form. This keeps the query portable across MySQL and SQLite.
func (r *gameRepository) FindContaining(ctx context.Context, field GameListField, value string) ([]models.Game, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var games []models.Game
	err = r.db.WithContext(ctx).
		Where(string(field)+" LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(string(encoded))+"%").
		Order("id").
		Find(&games).Error
	return games, err
}

func (r *gameRepository) Update(ctx context.Context, game *models.Game) error {
	return r.db.WithContext(ctx).Omit("Reviews").Save(game).Error
}

// Delete removes the game together with its reviews.
func (r *gameRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.GameReview{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Game{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

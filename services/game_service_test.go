package services

import (
	"context"
	"testing"

	"gamedominate/apperrors"
	"gamedominate/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.games.Create(ctx, GameInput{Title: "Star Drift", Developer: "Nova", Genre: []string{"RPG"}, Platform: []string{"PC"}}, nil)
	require.NoError(t, err)

	found, err := f.games.SearchBy(ctx, repositories.GameFieldDeveloper, "  Nova ")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := f.games.SearchContaining(ctx, repositories.GameListGenre, "Horror")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.games.SearchContaining(ctx, repositories.GameListPlatform, "Dreamcast")
	assertKind(t, err, apperrors.KindNotFound)
	assert.Equal(t, "No games found for platform : Dreamcast", apperrors.From(err).PublicMessage())

	_, err = f.games.SearchBy(ctx, repositories.GameFieldTitle, " ")
	assertKind(t, err, apperrors.KindBadRequest)
	assert.Equal(t, "Title query parameter is required", apperrors.From(err).PublicMessage())
}

func TestGameUpdateKeepsPicture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	game, err := f.games.Create(ctx, GameInput{Title: "Old"}, upload(t, "picture", "cover.png", 4))
	require.NoError(t, err)
	require.NotNil(t, game.Picture)

	updated, err := f.games.Update(ctx, game.ID, GameInput{Title: "New", Genre: []string{"Puzzle"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	require.NotNil(t, updated.Picture)
	assert.Equal(t, "picture-cover.png", *updated.Picture)

	_, err = f.games.Update(ctx, 999, GameInput{Title: "x"}, nil)
	assertKind(t, err, apperrors.KindNotFound)
	_, err = f.games.Create(ctx, GameInput{}, nil)
	assertKind(t, err, apperrors.KindBadRequest)
}

func TestGameReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	critic := f.register(t, "critic")
	game, err := f.games.Create(ctx, GameInput{Title: "Reviewed"}, nil)
	require.NoError(t, err)

	_, err = f.games.CreateReview(ctx, game.ID, critic, ReviewInput{Rating: 0})
	assertKind(t, err, apperrors.KindBadRequest)
	_, err = f.games.CreateReview(ctx, game.ID, critic, ReviewInput{Rating: 6})
	assertKind(t, err, apperrors.KindBadRequest)
	_, err = f.games.CreateReview(ctx, 999, critic, ReviewInput{Rating: 3})
	assertKind(t, err, apperrors.KindNotFound)

	review, err := f.games.CreateReview(ctx, game.ID, critic, ReviewInput{Rating: 4, Comment: " solid "})
	require.NoError(t, err)
	assert.Equal(t, critic, review.UserID)
	assert.Equal(t, "solid", review.Comment)
	require.NotNil(t, review.User)
	assert.Equal(t, "critic", review.User.Username)

	updated, err := f.games.UpdateReview(ctx, game.ID, review.ID, ReviewInput{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)

	list, err := f.games.ListReviews(ctx, game.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.games.GetReview(ctx, game.ID+1, review.ID)
	assertKind(t, err, apperrors.KindNotFound)

	require.NoError(t, f.games.DeleteReview(ctx, game.ID, review.ID))
	assertKind(t, f.games.DeleteReview(ctx, game.ID, review.ID), apperrors.KindNotFound)
}

func TestNewsService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.news.Create(ctx, NewsInput{Headline: "Launch day", Content: "It shipped"}, upload(t, "picture", "hero.jpg", 2))
	require.NoError(t, err)
	require.NotNil(t, item.Picture)

	item, err = f.news.Update(ctx, item.ID, NewsInput{Headline: "Launch week"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Launch week", item.Headline)
	assert.Equal(t, "picture-hero.jpg", *item.Picture)

	all, err := f.news.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, f.news.Delete(ctx, item.ID))
	_, err = f.news.Get(ctx, item.ID)
	assertKind(t, err, apperrors.KindNotFound)
	_, err = f.news.Create(ctx, NewsInput{Headline: "  "}, nil)
	assertKind(t, err, apperrors.KindBadRequest)
}

package services

import (
	"context"
	"testing"

	"gamedominate/apperrors"
	"gamedominate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(t *testing.T, f *fixture, owner uint) *models.CommunityPost {
	t.Helper()
	post, err := f.community.CreatePost(context.Background(), owner, PostInput{Title: "Speedrun tips", Content: "share yours"}, nil)
	require.NoError(t, err)
	return post
}

func TestCreatePostOwnedByCaller(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	post := newPost(t, f, alice)
	assert.Equal(t, alice, post.UserID)
	require.NotNil(t, post.User)
	assert.Equal(t, models.Author{ID: alice, Username: "alice"}, *post.User)
}

func TestCommentsAndReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := newPost(t, f, alice)

	top, err := f.community.CreateComment(ctx, post.ID, bob, CommentInput{Content: "first!"})
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)

	reply, err := f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: top.ID, Content: "welcome"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	threads, err := f.community.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "alice", threads[0].Replies[0].User.Username)

	full, err := f.community.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, full.Comments, 1)
	assert.Len(t, full.Comments[0].Replies, 1)
}

func TestCreateReplyValidatesParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	post := newPost(t, f, alice)
	other := newPost(t, f, alice)

	top, err := f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "top"})
	require.NoError(t, err)
	reply, err := f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: top.ID, Content: "reply"})
	require.NoError(t, err)

	_, err = f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: 999, Content: "x"})
	assertKind(t, err, apperrors.KindBadRequest)

	_, err = f.community.CreateReply(ctx, other.ID, alice, ReplyInput{ParentID: top.ID, Content: "x"})
	assertKind(t, err, apperrors.KindBadRequest)

	_, err = f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: reply.ID, Content: "x"})
	assertKind(t, err, apperrors.KindBadRequest)

	_, err = f.community.CreateReply(ctx, 999, alice, ReplyInput{ParentID: top.ID, Content: "x"})
	assertKind(t, err, apperrors.KindNotFound)

	_, err = f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "   "})
	assertKind(t, err, apperrors.KindBadRequest)
}

func TestThreadRoutesMatchKind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	post := newPost(t, f, alice)
	other := newPost(t, f, alice)
	top, err := f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "top"})
	require.NoError(t, err)
	reply, err := f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: top.ID, Content: "reply"})
	require.NoError(t, err)

	_, err = f.community.UpdateComment(ctx, post.ID, reply.ID, CommentInput{Content: "x"})
	assertKind(t, err, apperrors.KindNotFound)
	_, err = f.community.UpdateReply(ctx, post.ID, top.ID, CommentInput{Content: "x"})
	assertKind(t, err, apperrors.KindNotFound)
	_, err = f.community.UpdateComment(ctx, other.ID, top.ID, CommentInput{Content: "x"})
	assertKind(t, err, apperrors.KindNotFound)
	assertKind(t, f.community.DeleteReply(ctx, post.ID, top.ID), apperrors.KindNotFound)

	updated, err := f.community.UpdateReply(ctx, post.ID, reply.ID, CommentInput{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, alice, updated.UserID)
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := newPost(t, f, alice)

	top, err := f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "top"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.community.CreateReply(ctx, post.ID, bob, ReplyInput{ParentID: top.ID, Content: "reply"})
		require.NoError(t, err)
	}

	require.NoError(t, f.community.DeleteComment(ctx, post.ID, top.ID))

	var left int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&left).Error)
	assert.Zero(t, left)
	assertKind(t, f.community.DeleteComment(ctx, post.ID, top.ID), apperrors.KindNotFound)
}

func TestDeleteReplyKeepsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	post := newPost(t, f, alice)
	top, err := f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "top"})
	require.NoError(t, err)
	r1, err := f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: top.ID, Content: "one"})
	require.NoError(t, err)
	_, err = f.community.CreateReply(ctx, post.ID, alice, ReplyInput{ParentID: top.ID, Content: "two"})
	require.NoError(t, err)

	require.NoError(t, f.community.DeleteReply(ctx, post.ID, r1.ID))

	threads, err := f.community.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "two", threads[0].Replies[0].Content)
}

func TestUpdateAndDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	post := newPost(t, f, alice)
	_, err := f.community.CreateComment(ctx, post.ID, alice, CommentInput{Content: "c"})
	require.NoError(t, err)

	updated, err := f.community.UpdatePost(ctx, post.ID, PostInput{Title: "Renamed"}, upload(t, "picture", "p.png", 1))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, alice, updated.UserID)
	require.NotNil(t, updated.Picture)

	require.NoError(t, f.community.DeletePost(ctx, post.ID))
	_, err = f.community.GetPost(ctx, post.ID)
	assertKind(t, err, apperrors.KindNotFound)
	_, err = f.community.ListComments(ctx, post.ID)
	assertKind(t, err, apperrors.KindNotFound)
}

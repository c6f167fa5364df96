package controllers

import (
	"fmt"
	"net/http"

	"gamedominate/models"
	"gamedominate/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

type CommunityController struct {
	base
	communityService services.CommunityService
}

func NewCommunityController(communityService services.CommunityService, deps Deps) *CommunityController {
	return &CommunityController{base: newBase(deps), communityService: communityService}
}

// RegisterRoutes wires posts, comments and replies. Edits and deletes are
// limited to the author or an admin; a reply's author is checked against the
// reply itself, not its parent.
func (ctl *CommunityController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/community").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	postTags := []string{"community posts"}
	commentTags := []string{"community comments"}
	replyTags := []string{"community comment replies"}

	idParam := ws.PathParameter("id", "Identifier of the post").DataType("integer")
	postParam := ws.PathParameter("postId", "Identifier of the post").DataType("integer")
	commentParam := ws.PathParameter("commentId", "Identifier of the top-level comment").DataType("integer")
	replyParam := ws.PathParameter("replyId", "Identifier of the reply").DataType("integer")
	picture := ws.FormParameter("picture", "Picture").DataType("file").Required(false)

	ws.Route(docErrors(ws.GET("").To(ctl.listPosts).
		Doc("List community posts, newest first").
		Metadata(restfulspec.KeyOpenAPITags, postTags).
		Returns(http.StatusOK, "List of community posts", []models.CommunityPost{})))

	ws.Route(docErrors(ws.GET("/{id}").To(ctl.getPost).
		Doc("Get a post with its comment threads").
		Metadata(restfulspec.KeyOpenAPITags, postTags).
		Param(idParam).
		Returns(http.StatusOK, "Community post", models.CommunityPost{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("").
		Filter(ctl.authenticated()).To(ctl.createPost).
		Doc("Create a post owned by the caller").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, postTags).
		Reads(services.PostInput{}).
		Param(picture).
		Returns(http.StatusCreated, "Community post created successfully", models.CommunityPost{}),
		http.StatusBadRequest, http.StatusUnauthorized))

	ws.Route(docErrors(ws.PUT("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceCommunityPost, "id")).To(ctl.updatePost).
		Doc("Update a post").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, postTags).
		Param(idParam).
		Reads(services.PostInput{}).
		Param(picture).
		Returns(http.StatusOK, "Community post updated", models.CommunityPost{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceCommunityPost, "id")).To(ctl.deletePost).
		Doc("Delete a post and all of its comments").
		Metadata(restfulspec.KeyOpenAPITags, postTags).
		Param(idParam).
		Returns(http.StatusOK, "Community post deleted", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.GET("/{postId}/comments").To(ctl.listComments).
		Doc("List top-level comments with their replies").
		Metadata(restfulspec.KeyOpenAPITags, commentTags).
		Param(postParam).
		Returns(http.StatusOK, "Comment threads", []models.Comment{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("/{postId}/comments").
		Filter(ctl.authenticated()).To(ctl.createComment).
		Doc("Comment on a post").
		Metadata(restfulspec.KeyOpenAPITags, commentTags).
		Param(postParam).
		Reads(services.CommentInput{}).
		Returns(http.StatusCreated, "Comment created", models.Comment{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound))

	ws.Route(docErrors(ws.PUT("/{postId}/comments/{commentId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceComment, "commentId")).To(ctl.updateComment).
		Doc("Edit a top-level comment").
		Metadata(restfulspec.KeyOpenAPITags, commentTags).
		Param(postParam).Param(commentParam).
		Reads(services.CommentInput{}).
		Returns(http.StatusOK, "Comment updated", models.Comment{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{postId}/comments/{commentId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceComment, "commentId")).To(ctl.deleteComment).
		Doc("Delete a top-level comment and its replies").
		Metadata(restfulspec.KeyOpenAPITags, commentTags).
		Param(postParam).Param(commentParam).
		Returns(http.StatusOK, "Deleted successfully", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("/{postId}/comments/replies").
		Filter(ctl.authenticated()).To(ctl.createReply).
		Doc("Reply to a top-level comment").
		Metadata(restfulspec.KeyOpenAPITags, replyTags).
		Param(postParam).
		Reads(services.ReplyInput{}).
		Returns(http.StatusCreated, "Reply created", models.Comment{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound))

	ws.Route(docErrors(ws.PUT("/{postId}/comments/replies/{replyId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceComment, "replyId")).To(ctl.updateReply).
		Doc("Edit a reply").
		Metadata(restfulspec.KeyOpenAPITags, replyTags).
		Param(postParam).Param(replyParam).
		Reads(services.CommentInput{}).
		Returns(http.StatusOK, "Reply updated successfully", models.Comment{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{postId}/comments/replies/{replyId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceComment, "replyId")).To(ctl.deleteReply).
		Doc("Delete a reply").
		Metadata(restfulspec.KeyOpenAPITags, replyTags).
		Param(postParam).Param(replyParam).
		Returns(http.StatusOK, "Reply deleted", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))
}

func (ctl *CommunityController) listPosts(req *restful.Request, resp *restful.Response) {
	posts, err := ctl.communityService.ListPosts(req.Request.Context())
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "List of community posts", posts)
}

func (ctl *CommunityController) getPost(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	post, err := ctl.communityService.GetPost(req.Request.Context(), id)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Community post with ID : %d", id), post)
}

func (ctl *CommunityController) createPost(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.PostInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	post, err := ctl.communityService.CreatePost(req.Request.Context(), me.ID, input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "Community post created successfully", post)
}

func (ctl *CommunityController) updatePost(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.PostInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	post, err := ctl.communityService.UpdatePost(req.Request.Context(), id, input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Community post with ID : %d updated successfully", id), post)
}

func (ctl *CommunityController) deletePost(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.communityService.DeletePost(req.Request.Context(), id); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Community post with ID : %d deleted successfully", id), nil)
}

func (ctl *CommunityController) listComments(req *restful.Request, resp *restful.Response) {
	postID, err := pathID(req, "postId", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	threads, err := ctl.communityService.ListComments(req.Request.Context(), postID)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "", threads)
}

func (ctl *CommunityController) createComment(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	postID, err := pathID(req, "postId", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.CommentInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	comment, err := ctl.communityService.CreateComment(req.Request.Context(), postID, me.ID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "", comment)
}

func (ctl *CommunityController) updateComment(req *restful.Request, resp *restful.Response) {
	postID, commentID, err := threadIDs(req, "commentId", "comment")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.CommentInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	comment, err := ctl.communityService.UpdateComment(req.Request.Context(), postID, commentID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "", comment)
}

func (ctl *CommunityController) deleteComment(req *restful.Request, resp *restful.Response) {
	postID, commentID, err := threadIDs(req, "commentId", "comment")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.communityService.DeleteComment(req.Request.Context(), postID, commentID); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Deleted successfully", nil)
}

func (ctl *CommunityController) createReply(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	postID, err := pathID(req, "postId", "post")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.ReplyInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	reply, err := ctl.communityService.CreateReply(req.Request.Context(), postID, me.ID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "", reply)
}

func (ctl *CommunityController) updateReply(req *restful.Request, resp *restful.Response) {
	postID, replyID, err := threadIDs(req, "replyId", "reply")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.CommentInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	reply, err := ctl.communityService.UpdateReply(req.Request.Context(), postID, replyID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Reply updated successfully", reply)
}

func (ctl *CommunityController) deleteReply(req *restful.Request, resp *restful.Response) {
	postID, replyID, err := threadIDs(req, "replyId", "reply")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.communityService.DeleteReply(req.Request.Context(), postID, replyID); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Reply with ID : %d deleted successfully", replyID), nil)
}

func threadIDs(req *restful.Request, param, label string) (postID, id uint, err error) {
	if postID, err = pathID(req, "postId", "post"); err != nil {
		return 0, 0, err
	}
	if id, err = pathID(req, param, label); err != nil {
		return 0, 0, err
	}
	return postID, id, nil
}

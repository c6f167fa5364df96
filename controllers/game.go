package controllers

import (
	"fmt"
	"net/http"

	"gamedominate/models"
	"gamedominate/repositories"
	"gamedominate/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

type GameController struct {
	base
	gameService services.GameService
}

func NewGameController(gameService services.GameService, deps Deps) *GameController {
	return &GameController{base: newBase(deps), gameService: gameService}
}

func (ctl *GameController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/games").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"games"}
	reviewTags := []string{"game reviews"}
	idParam := ws.PathParameter("id", "Identifier of the game").DataType("integer")
	gameParam := ws.PathParameter("gameId", "Identifier of the game").DataType("integer")
	reviewParam := ws.PathParameter("reviewId", "Identifier of the review").DataType("integer")
	picture := ws.FormParameter("picture", "Cover picture").DataType("file").Required(false)

	ws.Route(docErrors(ws.GET("").To(ctl.list).
		Doc("List all games").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Games retrieved successfully", []models.Game{})))

	searches := []struct {
		path, param string
		handler     restful.RouteFunction
	}{
		{"/by-title", "title", ctl.searchBy(repositories.GameFieldTitle, "Games matching title")},
		{"/by-developer", "developer", ctl.searchBy(repositories.GameFieldDeveloper, "Games by developer")},
		{"/by-publisher", "publisher", ctl.searchBy(repositories.GameFieldPublisher, "Games by publisher")},
		{"/by-genre", "genre", ctl.searchContaining(repositories.GameListGenre, "Games of genre")},
		{"/by-platform", "platform", ctl.searchContaining(repositories.GameListPlatform, "Games of platform")},
	}
	for _, s := range searches {
		ws.Route(docErrors(ws.GET(s.path).To(s.handler).
			Doc("Search games by "+s.param).
			Metadata(restfulspec.KeyOpenAPITags, tags).
			Param(ws.QueryParameter(s.param, "Value to match").Required(true)).
			Returns(http.StatusOK, "Matching games", []models.Game{}),
			http.StatusBadRequest))
	}

	ws.Route(docErrors(ws.GET("/{id}").To(ctl.get).
		Doc("Get a game with its reviews").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "Game details", models.Game{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.create).
		Doc("Add a game to the catalog").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.GameInput{}).
		Param(picture).
		Returns(http.StatusCreated, "Game created successfully", models.Game{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden))

	ws.Route(docErrors(ws.PUT("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.update).
		Doc("Replace a game's details").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Reads(services.GameInput{}).
		Param(picture).
		Returns(http.StatusOK, "Game updated", models.Game{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.delete).
		Doc("Delete a game and its reviews").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "Game deleted", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.GET("/{gameId}/reviews").To(ctl.listReviews).
		Doc("List a game's reviews").
		Metadata(restfulspec.KeyOpenAPITags, reviewTags).
		Param(gameParam).
		Returns(http.StatusOK, "Reviews", []models.GameReview{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("/{gameId}/reviews").
		Filter(ctl.authenticated()).To(ctl.createReview).
		Doc("Review a game as the caller").
		Metadata(restfulspec.KeyOpenAPITags, reviewTags).
		Param(gameParam).
		Reads(services.ReviewInput{}).
		Returns(http.StatusCreated, "Review created successfully", models.GameReview{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound))

	ws.Route(docErrors(ws.GET("/{gameId}/reviews/{reviewId}").To(ctl.getReview).
		Doc("Get one review").
		Metadata(restfulspec.KeyOpenAPITags, reviewTags).
		Param(gameParam).Param(reviewParam).
		Returns(http.StatusOK, "Review", models.GameReview{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.PUT("/{gameId}/reviews/{reviewId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceGameReview, "reviewId")).To(ctl.updateReview).
		Doc("Edit a review; author or admin only").
		Metadata(restfulspec.KeyOpenAPITags, reviewTags).
		Param(gameParam).Param(reviewParam).
		Reads(services.ReviewInput{}).
		Returns(http.StatusOK, "Review updated", models.GameReview{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{gameId}/reviews/{reviewId}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceGameReview, "reviewId")).To(ctl.deleteReview).
		Doc("Delete a review; author or admin only").
		Metadata(restfulspec.KeyOpenAPITags, reviewTags).
		Param(gameParam).Param(reviewParam).
		Returns(http.StatusOK, "Review deleted", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))
}

func (ctl *GameController) list(req *restful.Request, resp *restful.Response) {
	games, err := ctl.gameService.List(req.Request.Context())
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Games retrieved successfully", games)
}

func (ctl *GameController) searchBy(field repositories.GameField, message string) restful.RouteFunction {
	return func(req *restful.Request, resp *restful.Response) {
		value := req.QueryParameter(string(field))
		games, err := ctl.gameService.SearchBy(req.Request.Context(), field, value)
		if err != nil {
			ctl.fail(req, resp, err)
			return
		}
		ctl.ok(resp, http.StatusOK, message+" : "+value, games)
	}
}

func (ctl *GameController) searchContaining(field repositories.GameListField, message string) restful.RouteFunction {
	return func(req *restful.Request, resp *restful.Response) {
		value := req.QueryParameter(string(field))
		games, err := ctl.gameService.SearchContaining(req.Request.Context(), field, value)
		if err != nil {
			ctl.fail(req, resp, err)
			return
		}
		ctl.ok(resp, http.StatusOK, message+" : "+value, games)
	}
}

func (ctl *GameController) get(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "game")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	game, err := ctl.gameService.Get(req.Request.Context(), id)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Details of game ID : %d", id), game)
}

func (ctl *GameController) create(req *restful.Request, resp *restful.Response) {
	var input services.GameInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	game, err := ctl.gameService.Create(req.Request.Context(), input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "Game created successfully", game)
}

func (ctl *GameController) update(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "game")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.GameInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	game, err := ctl.gameService.Update(req.Request.Context(), id, input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Game with ID : %d has been updated", id), game)
}

func (ctl *GameController) delete(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "game")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.gameService.Delete(req.Request.Context(), id); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Game with ID : %d has been deleted", id), nil)
}

func (ctl *GameController) listReviews(req *restful.Request, resp *restful.Response) {
	gameID, err := pathID(req, "gameId", "game")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	reviews, err := ctl.gameService.ListReviews(req.Request.Context(), gameID)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Reviews of game ID : %d", gameID), reviews)
}

func (ctl *GameController) getReview(req *restful.Request, resp *restful.Response) {
	gameID, reviewID, err := reviewIDs(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	review, err := ctl.gameService.GetReview(req.Request.Context(), gameID, reviewID)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "", review)
}

func (ctl *GameController) createReview(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	gameID, err := pathID(req, "gameId", "game")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.ReviewInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	review, err := ctl.gameService.CreateReview(req.Request.Context(), gameID, me.ID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "Review created successfully", review)
}

func (ctl *GameController) updateReview(req *restful.Request, resp *restful.Response) {
	gameID, reviewID, err := reviewIDs(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.ReviewInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	review, err := ctl.gameService.UpdateReview(req.Request.Context(), gameID, reviewID, input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Review updated successfully", review)
}

func (ctl *GameController) deleteReview(req *restful.Request, resp *restful.Response) {
	gameID, reviewID, err := reviewIDs(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.gameService.DeleteReview(req.Request.Context(), gameID, reviewID); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Review with ID : %d deleted successfully", reviewID), nil)
}

func reviewIDs(req *restful.Request) (gameID, reviewID uint, err error) {
	if gameID, err = pathID(req, "gameId", "game"); err != nil {
		return 0, 0, err
	}
	if reviewID, err = pathID(req, "reviewId", "review"); err != nil {
		return 0, 0, err
	}
	return gameID, reviewID, nil
}

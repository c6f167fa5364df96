package controllers

import (
	"fmt"
	"net/http"

	"gamedominate/models"
	"gamedominate/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

type NewsController struct {
	base
	newsService services.NewsService
}

func NewNewsController(newsService services.NewsService, deps Deps) *NewsController {
	return &NewsController{base: newBase(deps), newsService: newsService}
}

func (ctl *NewsController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/news").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"news"}
	idParam := ws.PathParameter("id", "Identifier of the news item").DataType("integer")
	picture := ws.FormParameter("picture", "Picture").DataType("file").Required(false)

	ws.Route(docErrors(ws.GET("").To(ctl.list).
		Doc("List news, newest first").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "News retrieved successfully", []models.News{})))

	ws.Route(docErrors(ws.GET("/{id}").To(ctl.get).
		Doc("Get a news item").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "News item", models.News{}),
		http.StatusBadRequest, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.create).
		Doc("Publish a news item").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.NewsInput{}).
		Param(picture).
		Returns(http.StatusCreated, "News item created successfully", models.News{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden))

	ws.Route(docErrors(ws.PUT("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.update).
		Doc("Update a news item").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Reads(services.NewsInput{}).
		Param(picture).
		Returns(http.StatusOK, "News item updated", models.News{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.DELETE("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.delete).
		Doc("Delete a news item").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "News item deleted", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))
}

func (ctl *NewsController) list(req *restful.Request, resp *restful.Response) {
	items, err := ctl.newsService.List(req.Request.Context())
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "News retrieved successfully", items)
}

func (ctl *NewsController) get(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "news")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	item, err := ctl.newsService.Get(req.Request.Context(), id)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("News item with ID : %d retrieved successfully", id), item)
}

func (ctl *NewsController) create(req *restful.Request, resp *restful.Response) {
	var input services.NewsInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	item, err := ctl.newsService.Create(req.Request.Context(), input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "News item created successfully", item)
}

func (ctl *NewsController) update(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "news")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.NewsInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	picture, err := ctl.file(req, "picture")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	item, err := ctl.newsService.Update(req.Request.Context(), id, input, picture)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("News item with ID : %d has been updated", id), item)
}

func (ctl *NewsController) delete(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "news")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	if err := ctl.newsService.Delete(req.Request.Context(), id); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("News item with ID : %d has been deleted", id), nil)
}

package controllers

import (
	"fmt"
	"net/http"

	"gamedominate/models"
	"gamedominate/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

type UserController struct {
	base
	userService services.UserService
}

func NewUserController(userService services.UserService, deps Deps) *UserController {
	return &UserController{base: newBase(deps), userService: userService}
}

// RegisterRoutes sets up the administrator's user routes. Deleting an account
// is also open to its owner.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/users").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"users"}
	idParam := ws.PathParameter("id", "Identifier of the user").DataType("integer")

	ws.Route(docErrors(ws.GET("").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.list).
		Doc("List users with pagination").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(ws.QueryParameter("page", "Page number (default 1)").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("page_size", "Users per page (default 10)").DataType("integer").DefaultValue("10")).
		Returns(http.StatusOK, "Users retrieved successfully", services.UserPage{}),
		http.StatusUnauthorized, http.StatusForbidden))

	ws.Route(docErrors(ws.GET("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.get).
		Doc("Get user by ID").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "User found", models.User{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))

	ws.Route(docErrors(ws.POST("").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.create).
		Doc("Create a user with an explicit role").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.CreateUserInput{}).
		Param(ws.FormParameter("profile", "Profile image").DataType("file").Required(false)).
		Returns(http.StatusCreated, "User created successfully", models.User{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict))

	ws.Route(docErrors(ws.PUT("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.adminOnly()).To(ctl.update).
		Doc("Update user by ID").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Reads(services.UpdateUserInput{}).
		Param(ws.FormParameter("profile", "Profile image").DataType("file").Required(false)).
		Returns(http.StatusOK, "User updated successfully", models.User{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict))

	ws.Route(docErrors(ws.DELETE("/{id}").
		Filter(ctl.authenticated()).Filter(ctl.ownerOrAdmin(models.ResourceUser, "id")).To(ctl.delete).
		Doc("Delete a user and everything they own").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Param(idParam).
		Returns(http.StatusOK, "User deleted successfully", Envelope{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound))
}

func (ctl *UserController) list(req *restful.Request, resp *restful.Response) {
	page, err := ctl.userService.List(req.Request.Context(), queryInt(req, "page", 1), queryInt(req, "page_size", 10))
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Users retrieved successfully", page)
}

func (ctl *UserController) get(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "user")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.userService.Get(req.Request.Context(), id)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("Details of user ID : %d", id), user)
}

func (ctl *UserController) create(req *restful.Request, resp *restful.Response) {
	var input services.CreateUserInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	profile, err := ctl.file(req, "profile")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.userService.Create(req.Request.Context(), input, profile)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "User created successfully", user)
}

func (ctl *UserController) update(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "user")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.UpdateUserInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	profile, err := ctl.file(req, "profile")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.userService.Update(req.Request.Context(), id, input, profile)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "User updated successfully", user)
}

func (ctl *UserController) delete(req *restful.Request, resp *restful.Response) {
	id, err := pathID(req, "id", "user")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	if err := ctl.userService.Delete(req.Request.Context(), id); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, fmt.Sprintf("User with ID : %d has been deleted", id), nil)
}

package controllers

import (
	"net/http"

	"gamedominate/models"
	"gamedominate/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

type AuthController struct {
	base
	authService services.AuthService
}

func NewAuthController(authService services.AuthService, deps Deps) *AuthController {
	return &AuthController{base: newBase(deps), authService: authService}
}

func (ctl *AuthController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/auth").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	tags := []string{"auth"}

	ws.Route(docErrors(ws.POST("/register").To(ctl.register).
		Doc("Register a new account. The configured admin address registers as admin.").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RegisterInput{}).
		Param(ws.FormParameter("profile", "Profile image").DataType("file").Required(false)).
		Returns(http.StatusCreated, "Register success", models.User{}),
		http.StatusBadRequest, http.StatusConflict))

	ws.Route(docErrors(ws.POST("/login").To(ctl.login).
		Doc("Exchange credentials for a bearer token").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.LoginInput{}).
		Returns(http.StatusOK, "Login successfully", services.LoginResult{}),
		http.StatusBadRequest, http.StatusUnauthorized))

	ws.Route(docErrors(ws.GET("/me").Filter(ctl.authenticated()).To(ctl.profile).
		Doc("Profile of the calling user").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Profile", models.User{}),
		http.StatusUnauthorized, http.StatusNotFound))

	ws.Route(docErrors(ws.PUT("/update-profile").Filter(ctl.authenticated()).To(ctl.updateProfile).
		Doc("Change the caller's username, password or profile image").
		Consumes(formMIMEs...).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.UpdateProfileInput{}).
		Param(ws.FormParameter("profile", "Profile image").DataType("file").Required(false)).
		Returns(http.StatusOK, "Profile updated successfully", models.User{}),
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound))
}

func (ctl *AuthController) register(req *restful.Request, resp *restful.Response) {
	var input services.RegisterInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	profile, err := ctl.file(req, "profile")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.authService.Register(req.Request.Context(), input, profile)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusCreated, "Register success", user)
}

func (ctl *AuthController) login(req *restful.Request, resp *restful.Response) {
	var input services.LoginInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}

	result, err := ctl.authService.Login(req.Request.Context(), input)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Login successfully", result)
}

func (ctl *AuthController) profile(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.authService.Profile(req.Request.Context(), me.ID)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "", user)
}

func (ctl *AuthController) updateProfile(req *restful.Request, resp *restful.Response) {
	me, err := caller(req)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	var input services.UpdateProfileInput
	if err := ctl.bind(req, &input); err != nil {
		ctl.fail(req, resp, err)
		return
	}
	profile, err := ctl.file(req, "profile")
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}

	user, err := ctl.authService.UpdateProfile(req.Request.Context(), me.ID, input, profile)
	if err != nil {
		ctl.fail(req, resp, err)
		return
	}
	ctl.ok(resp, http.StatusOK, "Profile updated successfully", user)
}

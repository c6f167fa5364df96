// Package controllers exposes the services over go-restful WebServices.
package controllers

import (
	"gamedominate/apperrors"
	"gamedominate/auth"
	"gamedominate/models"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Deps are shared by every controller.
type Deps struct {
	Tokens *auth.TokenService
	Owners auth.OwnerLookup
	Log    *zap.Logger
	// FormMemory is how much of a multipart body is held in memory.
	FormMemory int64
}

type base struct {
	responder
	binder
	deps Deps
}

func newBase(deps Deps) base {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.FormMemory <= 0 {
		deps.FormMemory = 8 << 20
	}
	return base{
		responder: responder{log: deps.Log},
		binder:    binder{maxBytes: deps.FormMemory},
		deps:      deps,
	}
}

func (b base) authenticated() restful.FilterFunction {
	return auth.Authenticate(b.deps.Tokens)
}

func (b base) adminOnly() restful.FilterFunction {
	return auth.RequireRoles(models.RoleAdmin)
}

func (b base) ownerOrAdmin(resource models.Resource, param string) restful.FilterFunction {
	return auth.OwnerOrAdmin(b.deps.Owners, resource, param, b.deps.Log)
}

// caller is the identity attached by the authentication filter.
func caller(req *restful.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFromRequest(req)
	if !ok {
		return auth.Identity{}, apperrors.Unauthenticated("Unauthorized")
	}
	return id, nil
}

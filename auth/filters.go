package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"gamedominate/apperrors"
	"gamedominate/models"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

const identityAttribute = "identity"

type contextKey struct{}

// WithIdentity stores id in ctx for non-HTTP callers such as gRPC handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// IdentityFromRequest returns the identity attached by Authenticate.
func IdentityFromRequest(req *restful.Request) (Identity, bool) {
	id, ok := req.Attribute(identityAttribute).(Identity)
	return id, ok
}

// OwnerLookup loads only the owning user id of a resource row. It returns
// apperrors.ErrNotFound when the row does not exist.
type OwnerLookup interface {
	FindOwnerID(ctx context.Context, resource models.Resource, id uint) (uint, error)
}

// Authenticate rejects requests without a valid bearer token and attaches the
// caller's identity for the filters and handlers that follow.
func Authenticate(tokens *TokenService) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		tokenString, ok := ExtractBearer(req.HeaderParameter("Authorization"))
		if !ok {
			reject(resp, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := tokens.Verify(tokenString)
		if err != nil {
			reject(resp, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id := claims.Identity()
		req.SetAttribute(identityAttribute, id)
		req.Request = req.Request.WithContext(WithIdentity(req.Request.Context(), id))
		chain.ProcessFilter(req, resp)
	}
}

// RequireRoles lets a request through only when the caller's role is one of roles.
// It must run after Authenticate.
func RequireRoles(roles ...models.Role) restful.FilterFunction {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		id, ok := IdentityFromRequest(req)
		if !ok {
			reject(resp, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, ok := allowed[id.Role]; !ok {
			reject(resp, http.StatusForbidden, "Forbidden")
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// OwnerOrAdmin lets admins through unconditionally and everyone else only when
// they own the resource whose id is in the path parameter param.
// It must run after Authenticate.
func OwnerOrAdmin(lookup OwnerLookup, resource models.Resource, param string, logger *zap.Logger) restful.FilterFunction {
	log := logger.With(zap.String("resource", string(resource)), zap.String("param", param))
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		caller, ok := IdentityFromRequest(req)
		if !ok {
			reject(resp, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if caller.Role.IsAdmin() {
			chain.ProcessFilter(req, resp)
			return
		}

		id, err := strconv.ParseUint(req.PathParameter(param), 10, 64)
		if err != nil || id == 0 {
			reject(resp, http.StatusBadRequest, "Invalid "+param)
			return
		}

		ownerID, err := lookup.FindOwnerID(req.Request.Context(), resource, uint(id))
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				reject(resp, http.StatusNotFound, "Not found")
				return
			}
			log.Error("Ownership lookup failed", zap.Uint64("id", id), zap.Error(err))
			reject(resp, http.StatusInternalServerError, apperrors.InternalMessage)
			return
		}
		if ownerID != caller.ID {
			reject(resp, http.StatusForbidden, "Forbidden")
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

func reject(resp *restful.Response, status int, message string) {
	_ = resp.WriteHeaderAndJson(status, map[string]string{"status": "error", "message": message}, restful.MIME_JSON)
}

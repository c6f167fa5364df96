package controllers

import (
	"net/http"
	"strconv"

	"gamedominate/apperrors"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// responder writes envelopes and turns service errors into HTTP errors.
type responder struct {
	log *zap.Logger
}

func (r responder) ok(resp *restful.Response, status int, message string, data any) {
	if err := resp.WriteHeaderAndJson(status, Envelope{Status: statusSuccess, Message: message, Data: data}, restful.MIME_JSON); err != nil {
		r.log.Warn("Failed to write response", zap.Error(err))
	}
}

// fail maps err to its status. Internal errors are logged with their cause
// and answered with the generic message only.
func (r responder) fail(req *restful.Request, resp *restful.Response, err error) {
	appErr := apperrors.From(err)
	if appErr.Kind == apperrors.KindInternal {
		r.log.Error("Request failed",
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Error(err),
		)
	}
	body := Envelope{Status: statusError, Message: appErr.PublicMessage()}
	if werr := resp.WriteHeaderAndJson(appErr.Status(), body, restful.MIME_JSON); werr != nil {
		r.log.Warn("Failed to write response", zap.Error(werr))
	}
}

// pathID parses a numeric path parameter; label names it in the error.
func pathID(req *restful.Request, param, label string) (uint, error) {
	id, err := strconv.ParseUint(req.PathParameter(param), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("Invalid %s ID", label)
	}
	return uint(id), nil
}

// queryInt returns the query parameter as an int, or def when absent or malformed.
func queryInt(req *restful.Request, name string, def int) int {
	v, err := strconv.Atoi(req.QueryParameter(name))
	if err != nil {
		return def
	}
	return v
}

// Common OpenAPI response docs.
func docErrors(rb *restful.RouteBuilder, codes ...int) *restful.RouteBuilder {
	for _, code := range codes {
		rb = rb.Returns(code, http.StatusText(code), Envelope{})
	}
	return rb
}

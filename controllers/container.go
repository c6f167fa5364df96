package controllers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"gamedominate/apperrors"
	"gamedominate/metrics"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome to GameDominate+"

// RouteRegistrar is implemented by every controller.
type RouteRegistrar interface {
	RegisterRoutes(ws *restful.WebService)
}

type ContainerOptions struct {
	Log     *zap.Logger
	Metrics *metrics.HTTPMetrics
	// Health reports whether the service can serve requests. Nil means always healthy.
	Health func(ctx context.Context) error
	// ImagesDir is served under ImagesPath when both are set.
	ImagesDir  string
	ImagesPath string
}

// NewContainer assembles the HTTP API: one WebService per registrar plus the
// system routes, request logging, metrics, CORS and the OpenAPI document.
func NewContainer(opts ContainerOptions, registrars ...RouteRegistrar) *restful.Container {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := restful.NewContainer()
	c.Router(restful.CurlyRouter{})
	c.DoNotRecover(false)
	c.RecoverHandler(recoverHandler(log))
	c.ServiceErrorHandler(serviceErrorHandler)

	c.Filter(RequestLogger(log))
	if opts.Metrics != nil {
		c.Filter(opts.Metrics.Filter)
	}
	cors := restful.CrossOriginResourceSharing{
		AllowedHeaders: []string{"Content-Type", "Accept", "Authorization"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CookiesAllowed: false,
		Container:      c,
	}
	c.Filter(cors.Filter)

	for _, r := range registrars {
		ws := new(restful.WebService)
		r.RegisterRoutes(ws)
		c.Add(ws)
	}
	c.Add(systemService(opts.Health, log))

	c.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   c.RegisteredWebServices(),
		APIPath:                       "/apidocs.json",
		PostBuildSwaggerObjectHandler: describeAPI,
	}))

	if opts.Metrics != nil {
		c.Handle("/metrics", opts.Metrics.Handler())
	}
	if opts.ImagesDir != "" && opts.ImagesPath != "" {
		prefix := "/" + strings.Trim(opts.ImagesPath, "/") + "/"
		c.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(opts.ImagesDir))))
	}
	return c
}

func systemService(health func(ctx context.Context) error, log *zap.Logger) *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/").Produces(restful.MIME_JSON, "text/plain")
	tags := []string{"system"}

	ws.Route(ws.GET("/").To(func(req *restful.Request, resp *restful.Response) {
		resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
		resp.WriteHeader(http.StatusOK)
		_, _ = resp.Write([]byte(welcomeMessage))
	}).
		Doc("Welcome message").
		Metadata(restfulspec.KeyOpenAPITags, tags))

	ws.Route(ws.GET("/healthz").To(func(req *restful.Request, resp *restful.Response) {
		if health != nil {
			if err := health(req.Request.Context()); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				writeEnvelope(resp, http.StatusServiceUnavailable, Envelope{Status: statusError, Message: "unavailable"})
				return
			}
		}
		writeEnvelope(resp, http.StatusOK, Envelope{Status: statusSuccess, Message: "ok"})
	}).
		Doc("Liveness and database connectivity").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Healthy", Envelope{}).
		Returns(http.StatusServiceUnavailable, "Unhealthy", Envelope{}))

	return ws
}

// RequestLogger logs one line per request once it has been handled.
func RequestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		logger.Info("Request",
			zap.String("client_ip", clientIP(req.Request)),
			zap.String("method", req.Request.Method),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
			zap.String("path", req.Request.URL.Path),
		)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Unknown paths and methods get the usual envelope instead of go-restful's plain text.
func serviceErrorHandler(serr restful.ServiceError, req *restful.Request, resp *restful.Response) {
	message := http.StatusText(serr.Code)
	if message == "" {
		message = serr.Message
	}
	writeEnvelope(resp, serr.Code, Envelope{Status: statusError, Message: message})
}

func recoverHandler(log *zap.Logger) restful.RecoverHandleFunction {
	return func(panicReason any, w http.ResponseWriter) {
		log.Error("Recovered from panic", zap.Any("panic", panicReason), zap.Stack("stack"))
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","message":"` + apperrors.InternalMessage + `"}`))
	}
}

func writeEnvelope(resp *restful.Response, status int, body Envelope) {
	_ = resp.WriteHeaderAndJson(status, body, restful.MIME_JSON)
}

func describeAPI(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "GameDominate+ API",
			Description: "Games, reviews, news and community threads",
			Version:     "1.0",
		},
	}
	swo.SecurityDefinitions = spec.SecurityDefinitions{
		"bearer": spec.APIKeyAuth("Authorization", "header"),
	}
}

package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"time"

	"gamedominate/apperrors"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-viper/mapstructure/v2"
)

// MIME types accepted by routes that take an optional upload.
var formMIMEs = []string{restful.MIME_JSON, "multipart/form-data", "application/x-www-form-urlencoded"}

// binder decodes request bodies into service inputs.
type binder struct {
	maxBytes int64
}

// bind fills dst from a JSON body or from form fields, matching on json tags.
// Form values are strings; lists accept a JSON array or a comma separated
// string and dates accept RFC 3339 or YYYY-MM-DD.
func (b binder) bind(req *restful.Request, dst any) error {
	if !isForm(req.Request) {
		if err := req.ReadEntity(dst); err != nil {
			return apperrors.BadRequest("Invalid request body")
		}
		return nil
	}

	if err := b.parseForm(req.Request); err != nil {
		return err
	}
	values := make(map[string]any, len(req.Request.Form))
	for key, vals := range req.Request.Form {
		if len(vals) > 0 {
			values[key] = vals[len(vals)-1]
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToStringSlice,
			stringToTime,
		),
	})
	if err != nil {
		return apperrors.Internal("building form decoder", err)
	}
	if err := dec.Decode(values); err != nil {
		return apperrors.BadRequest("Invalid form data")
	}
	return nil
}

// file returns the uploaded file for field, or nil when none was sent.
func (b binder) file(req *restful.Request, field string) (*multipart.FileHeader, error) {
	if !isMultipart(req.Request) {
		return nil, nil
	}
	if err := b.parseForm(req.Request); err != nil {
		return nil, err
	}
	_, header, err := req.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.BadRequest("Error uploading file")
	}
	return header, nil
}

func (b binder) parseForm(r *http.Request) error {
	if r.Form != nil && (r.MultipartForm != nil || !isMultipart(r)) {
		return nil
	}
	if isMultipart(r) {
		// Whatever exceeds memory is spooled to disk; size limits are the services' job.
		if err := r.ParseMultipartForm(b.maxBytes); err != nil {
			return apperrors.BadRequest("Error uploading file")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return apperrors.BadRequest("Invalid form data")
	}
	return nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func isMultipart(r *http.Request) bool {
	return mediaType(r) == "multipart/form-data"
}

func isForm(r *http.Request) bool {
	mt := mediaType(r)
	return mt == "multipart/form-data" || mt == "application/x-www-form-urlencoded"
}

var (
	stringSliceType = reflect.TypeOf([]string(nil))
	timeType        = reflect.TypeOf(time.Time{})
)

func stringToStringSlice(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != stringSliceType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var list []string
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list, nil
}

func stringToTime(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

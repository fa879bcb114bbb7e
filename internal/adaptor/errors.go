package adaptor

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

var errMethodNotAllowed = errors.New("method not allowed")

// ErrorMapper is the single place where failures become HTTP responses:
// the JSON envelope under /api, an HTML error page elsewhere.
type ErrorMapper struct {
	views *Views
	debug bool
	log   *zap.Logger
}

func NewErrorMapper(views *Views, debug bool, log *zap.Logger) *ErrorMapper {
	return &ErrorMapper{
		views: views,
		debug: debug,
		log:   log.With(zap.String("component", "errors")),
	}
}

func statusFor(err error) int {
	var validationErr *usecase.ValidationError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.Is(err, usecase.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrDuplicateRelation), errors.Is(err, usecase.ErrRelationNotFound):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrEmailNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Handle writes the response for err. Server errors are logged with their
// cause and answered with a generic message.
func (m *ErrorMapper) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := publicMessage(err, status)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", utils.RequestIDFromContext(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		m.log.Error("Request failed", fields...)
	} else {
		m.log.Warn("Request rejected", fields...)
	}

	if isAPI(r) {
		var trace []string
		if m.debug {
			trace = errorTrace(err)
		}
		utils.ResponseError(w, status, message, trace)
		return
	}

	m.views.RenderError(w, r, status, message)
}

// NotFound answers requests no route matched.
func (m *ErrorMapper) NotFound(w http.ResponseWriter, r *http.Request) {
	m.Handle(w, r, fmt.Errorf("no route for %s %s: %w", r.Method, r.URL.Path, usecase.ErrNotFound))
}

func (m *ErrorMapper) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	m.Handle(w, r, fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, errMethodNotAllowed))
}

func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return err.Error()
}

// errorTrace lists the error chain from the outermost wrapper inwards.
func errorTrace(err error) []string {
	var trace []string
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			trace = append(trace, e.Error())
			if multi, ok := e.(interface{ Unwrap() []error }); ok {
				for _, inner := range multi.Unwrap() {
					walk(inner)
				}
				return
			}
			e = errors.Unwrap(e)
		}
	}
	walk(err)
	return trace
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

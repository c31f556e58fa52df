// Package openapi validates incoming requests against the API description.
package openapi

import (
	stdErrors "errors"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

type Validator struct {
	router routers.Router
}

func NewValidator(doc *openapi3.T) (*Validator, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return &Validator{router: router}, nil
}

// Middleware rejects requests whose parameters or body do not match the
// document. Paths the document does not describe pass through untouched.
// Authentication is left to the auth middleware.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			logger.From(r.Context()).Debug("request failed openapi validation", "error", err, "path", r.URL.Path)
			transport.WriteError(w, http.StatusBadRequest, describe(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func describe(err error) string {
	var schemaErr *openapi3.SchemaError
	if stdErrors.As(err, &schemaErr) && schemaErr.Reason != "" {
		return schemaErr.Reason
	}

	var reqErr *openapi3filter.RequestError
	if stdErrors.As(err, &reqErr) {
		if reqErr.Reason != "" {
			return reqErr.Reason
		}
		if reqErr.Err != nil {
			return reqErr.Err.Error()
		}
	}
	return "Invalid request body"
}

package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/pension/internal/core"
)

// Query limits.
const (
	maxNameLength   = 100
	defaultPageSize = 50
	maxPageSize     = 500
	maxPage         = 1_000_000
)

// nameQuery is the ?name= parameter shared by find, compare, company and export.
type nameQuery struct {
	Name string `query:"name" validate:"required,max=100"`
}

// pageQuery is the ?page=&page_size= pair of the data endpoint.
type pageQuery struct {
	Page     int `query:"page" validate:"min=1,max=1000000"`
	PageSize int `query:"page_size" validate:"min=1,max=500"`
}

// newValidator reports field errors by their query parameter name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseName reads and validates the name parameter. Surrounding spaces are
// kept because Find matches raw substrings.
func (s *Server) parseName(r *http.Request) (string, error) {
	q := nameQuery{Name: r.URL.Query().Get("name")}
	if err := s.validate.Struct(q); err != nil {
		return "", invalidQuery(err)
	}
	return q.Name, nil
}

// parsePage reads page and page_size, defaulting to the first page of defaultPageSize.
func (s *Server) parsePage(r *http.Request) (pageQuery, error) {
	q := pageQuery{Page: 1, PageSize: defaultPageSize}
	values := r.URL.Query()

	for _, p := range []struct {
		key string
		dst *int
	}{
		{"page", &q.Page},
		{"page_size", &q.PageSize},
	} {
		raw := values.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be an integer", core.ErrInvalidQuery, p.key)
		}
		*p.dst = n
	}

	if err := s.validate.Struct(q); err != nil {
		return q, invalidQuery(err)
	}
	return q, nil
}

// invalidQuery flattens validator errors into one ErrInvalidQuery.
func invalidQuery(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", core.ErrInvalidQuery, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", core.ErrInvalidQuery, strings.Join(parts, "; "))
}

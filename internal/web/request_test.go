package web

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pension/internal/core"
)

func urlEncode(s string) string {
	return url.QueryEscape(s)
}

func TestParseName_KeepsSpaces(t *testing.T) {
	s := &Server{validate: newValidator()}
	name, err := s.parseName(httptest.NewRequest("GET", "/?name=%20Acme%20", nil))
	require.NoError(t, err)
	assert.Equal(t, " Acme ", name)
}

func TestParsePage(t *testing.T) {
	s := &Server{validate: newValidator()}

	tests := []struct {
		query   string
		want    pageQuery
		wantErr string
	}{
		{"", pageQuery{Page: 1, PageSize: defaultPageSize}, ""},
		{"page=3&page_size=10", pageQuery{Page: 3, PageSize: 10}, ""},
		{"page_size=500", pageQuery{Page: 1, PageSize: maxPageSize}, ""},
		{"page=-1", pageQuery{}, "page failed min=1"},
		{"page_size=0", pageQuery{}, "page_size failed min=1"},
		{"page_size=1000", pageQuery{}, "page_size failed max=500"},
		{"page=1000000", pageQuery{Page: maxPage, PageSize: defaultPageSize}, ""},
		{"page=1000001", pageQuery{}, "page failed max=1000000"},
		{"page=4611686018427387905&page_size=2", pageQuery{}, "page failed max=1000000"},
		{"page=x", pageQuery{}, "page must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.parsePage(httptest.NewRequest("GET", "/api/data?"+tt.query, nil))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrInvalidQuery))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 404, statusFor(core.ErrNotFound))
	assert.Equal(t, 400, statusFor(core.ErrInvalidQuery))
	assert.Equal(t, 429, statusFor(core.ErrRateLimited))
	assert.Equal(t, 500, statusFor(core.ErrDecode))
	assert.Equal(t, 500, statusFor(errors.New("boom")))
}

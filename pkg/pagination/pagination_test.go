package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestPolicy_Limit(t *testing.T) {
	p := DefaultPolicy()

	got, err := p.Limit(nil)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	got, err = p.Limit(intp(100))
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	_, err = p.Limit(intp(0))
	assert.EqualError(t, err, "must be between 1 and 100")

	_, err = p.Limit(intp(101))
	assert.Error(t, err)
}

func TestPolicy_Params(t *testing.T) {
	p := Policy{Default: 3, Max: 50}

	params, err := p.Params(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 1, PerPage: 3, Offset: 0}, params)

	params, err = p.Params(intp(4), intp(10))
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 4, PerPage: 10, Offset: 30}, params)

	_, err = p.Params(intp(0), nil)
	assert.Error(t, err)

	_, err = p.Params(nil, intp(51))
	assert.ErrorContains(t, err, "per_page")
}

func TestPolicy_FromRequest(t *testing.T) {
	p := DefaultPolicy()

	params := p.FromRequest(httptest.NewRequest(http.MethodGet, "/api/categories?page=3&per_page=50", nil))
	assert.Equal(t, Params{Page: 3, PerPage: 50, Offset: 100}, params)

	params = p.FromRequest(httptest.NewRequest(http.MethodGet, "/api/categories?page=-1&per_page=500", nil))
	assert.Equal(t, Params{Page: 1, PerPage: 12, Offset: 0}, params)
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 7, Params{Page: 2, PerPage: 3})
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)

	empty := NewResult[string](nil, 0, Params{Page: 1, PerPage: 3})
	assert.NotNil(t, empty.Data)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

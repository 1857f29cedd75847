package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	code, resp := serve(t, NewHandler().LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("mongo", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return nil })

	code, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadiness_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("mongo", func(context.Context) error { return nil })
	h.Register("kafka", func(context.Context) error { return errors.New("all brokers unreachable") })

	code, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["mongo"].Status)
	assert.Equal(t, "all brokers unreachable", resp.Checks["kafka"].Error)
}

func TestReadiness_ChecksSeeDeadline(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})
	code, _ := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/smarthome/internal/review/application"
	"github.com/wyfcoding/smarthome/internal/review/domain"
	"github.com/wyfcoding/smarthome/internal/review/infrastructure/persistence/memory"
)

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReviewRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewReviewHandler(application.NewReviewService(memory.NewReviewRepository())).RegisterRoutes(&r.RouterGroup)

	w := do(r, http.MethodPost, "/api/product-review",
		`{"ProductModelName":"Philips Hue Bulb","ReviewRating":5,"ReviewText":"Bright","UserAge":34,"StoreZip":"60616"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.ID, 24)

	w = do(r, http.MethodPost, "/api/product-review", `{"ProductModelName":"Philips Hue Bulb","ReviewRating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/product-reviews/Philips%20Hue%20Bulb", "")
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []domain.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, 34, reviews[0].UserAge)
	assert.False(t, reviews[0].Timestamp.IsZero())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/product-reviews", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/trending/liked-products", "").Code)
}

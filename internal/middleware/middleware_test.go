package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/testutil"
	"marketplace/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func whoami(c *gin.Context) {
	id, _ := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "role": c.GetString(middleware.RoleKey)})
}

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(id, role, secret)
	require.NoError(t, err)
	return tok
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", middleware.JWTAuthMiddleware(secret), whoami)
	r.POST("/me", middleware.JWTAuthMiddleware(secret), whoami)

	cases := []struct {
		name   string
		method string
		target string
		header string
		want   int
	}{
		{"missing header", "GET", "/me", "", http.StatusUnauthorized},
		{"not bearer", "GET", "/me", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "GET", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid header", "GET", "/me", "Bearer " + token(t, 3, "buyer"), http.StatusOK},
		{"query token on GET", "GET", "/me?access_token=" + token(t, 3, "buyer"), "", http.StatusOK},
		{"query token on POST", "POST", "/me?access_token=" + token(t, 3, "buyer"), "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	db := testutil.OpenTestDB(t)
	buyer := testutil.SeedUser(t, db, "buyer", domain.RoleBuyer, 0)
	seller := testutil.SeedUser(t, db, "seller", domain.RoleSeller, 0)
	admin := testutil.SeedUser(t, db, "admin", domain.RoleAdmin, 0)

	r := gin.New()
	auth := middleware.JWTAuthMiddleware(secret)
	r.GET("/seller", auth, middleware.SellerOnlyMiddleware(db), whoami)
	r.GET("/admin", auth, middleware.AdminOnlyMiddleware(db), whoami)

	do := func(path, tok string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, do("/seller", token(t, buyer.ID, domain.RoleBuyer)))
	assert.Equal(t, http.StatusOK, do("/seller", token(t, seller.ID, domain.RoleSeller)))
	assert.Equal(t, http.StatusOK, do("/seller", token(t, admin.ID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusForbidden, do("/admin", token(t, seller.ID, domain.RoleSeller)))
	assert.Equal(t, http.StatusOK, do("/admin", token(t, admin.ID, domain.RoleAdmin)))

	// A forged role claim does not help: the stored role wins
	assert.Equal(t, http.StatusForbidden, do("/admin", token(t, buyer.ID, domain.RoleAdmin)))
	// Unknown users are rejected
	assert.Equal(t, http.StatusForbidden, do("/admin", token(t, 9999, domain.RoleAdmin)))
}

func TestRequestLogger_EchoesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"marketplace/internal/domain"
	"marketplace/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func productPath(id uint) string {
	return "/seller/products/" + strconv.FormatUint(uint64(id), 10)
}

func TestProducts_SellerCRUD(t *testing.T) {
	ts := newTestServer(t)
	seller := testutil.SeedUser(t, ts.db, "sam", domain.RoleSeller, 0)
	tok := tokenFor(t, seller.ID, seller.Role)

	w := ts.do(t, "POST", "/seller/products", tok, gin.H{
		"title": "  Ceramic Mug ", "description": "Holds coffee", "category": "kitchen", "price": 12.5, "stock": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)["product"].(map[string]any)
	assert.Equal(t, "Ceramic Mug", created["title"])
	id := uint(created["id"].(float64))

	w = ts.do(t, "PUT", productPath(id), tok, gin.H{"price": 15, "stock": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["product"].(map[string]any)
	assert.Equal(t, 15.0, updated["price"])
	assert.Equal(t, 0.0, updated["stock"])
	assert.Equal(t, "Ceramic Mug", updated["title"])

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "PUT", productPath(id), tok, gin.H{"price": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "PUT", productPath(id), tok, gin.H{}).Code)

	w = ts.do(t, "DELETE", productPath(id), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "GET", "/products/"+strconv.Itoa(int(id)), "", nil).Code)

	w = ts.do(t, "GET", "/seller/products", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"], "sellers still see inactive products")
}

func TestProducts_Validation(t *testing.T) {
	ts := newTestServer(t)
	seller := testutil.SeedUser(t, ts.db, "sam", domain.RoleSeller, 0)
	tok := tokenFor(t, seller.ID, seller.Role)

	for _, body := range []gin.H{
		{"title": "", "price": 1},
		{"title": "   ", "price": 1},
		{"title": "Mug", "price": 0},
		{"title": "Mug", "price": 1, "stock": -1},
		{"title": strings.Repeat("x", 201), "price": 1},
	} {
		assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/seller/products", tok, body).Code, body)
	}
}

func TestProducts_OwnershipAndRoles(t *testing.T) {
	ts := newTestServer(t)
	owner := testutil.SeedUser(t, ts.db, "owner", domain.RoleSeller, 0)
	other := testutil.SeedUser(t, ts.db, "other", domain.RoleSeller, 0)
	buyer := testutil.SeedUser(t, ts.db, "buyer", domain.RoleBuyer, 0)
	admin := testutil.SeedUser(t, ts.db, "admin", domain.RoleAdmin, 0)
	p := testutil.SeedProduct(t, ts.db, owner.ID, "Lamp", 30, 1)

	assert.Equal(t, http.StatusForbidden, ts.do(t, "PUT", productPath(p.ID), tokenFor(t, other.ID, other.Role), gin.H{"price": 1}).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(t, "POST", "/seller/products", tokenFor(t, buyer.ID, buyer.Role), gin.H{"title": "x", "price": 1}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, "PUT", productPath(9999), tokenFor(t, owner.ID, owner.Role), gin.H{"price": 1}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "PUT", "/seller/products/abc", tokenFor(t, owner.ID, owner.Role), gin.H{"price": 1}).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, "PUT", productPath(p.ID), tokenFor(t, admin.ID, admin.Role), gin.H{"price": 25}).Code)
}

func TestProducts_StorefrontListing(t *testing.T) {
	ts := newTestServer(t)
	s1 := testutil.SeedUser(t, ts.db, "one", domain.RoleSeller, 0)
	s2 := testutil.SeedUser(t, ts.db, "two", domain.RoleSeller, 0)
	testutil.SeedProduct(t, ts.db, s1.ID, "Blue Mug", 10, 1)
	testutil.SeedProduct(t, ts.db, s1.ID, "Red Mug", 20, 1)
	testutil.SeedProduct(t, ts.db, s2.ID, "Poster", 5, 1)
	hidden := testutil.SeedProduct(t, ts.db, s2.ID, "Hidden Mug", 1, 1)
	require.NoError(t, ts.db.Model(&hidden).Update("active", false).Error)

	total := func(query string) float64 {
		w := ts.do(t, "GET", "/products"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode(t, w)["total"].(float64)
	}

	assert.Equal(t, 3.0, total(""))
	assert.Equal(t, 2.0, total("?q=mug"))
	assert.Equal(t, 1.0, total("?seller_id="+strconv.Itoa(int(s2.ID))))
	assert.Equal(t, 2.0, total("?min_price=10"))
	assert.Equal(t, 1.0, total("?q=MUG&max_price=15"))

	w := ts.do(t, "GET", "/products?page_size=2&page=2", "", nil)
	body := decode(t, w)
	assert.Len(t, body["products"], 1)
	assert.Equal(t, 2.0, body["total_pages"])
}

func TestProducts_ListingCacheInvalidatedOnCreate(t *testing.T) {
	ts := newTestServer(t)
	seller := testutil.SeedUser(t, ts.db, "sam", domain.RoleSeller, 0)
	tok := tokenFor(t, seller.ID, seller.Role)

	assert.Equal(t, 0.0, decode(t, ts.do(t, "GET", "/products", "", nil))["total"])
	assert.Equal(t, true, decode(t, ts.do(t, "GET", "/products", "", nil))["cached"])

	require.Equal(t, http.StatusCreated, ts.do(t, "POST", "/seller/products", tok, gin.H{"title": "Mug", "price": 3}).Code)

	body := decode(t, ts.do(t, "GET", "/products", "", nil))
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, 1.0, body["total"])
}

func uploadImage(t *testing.T, ts *testServer, token string, id uint, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", productPath(id)+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestProducts_ImageUpload(t *testing.T) {
	ts := newTestServer(t)
	seller := testutil.SeedUser(t, ts.db, "sam", domain.RoleSeller, 0)
	tok := tokenFor(t, seller.ID, seller.Role)
	p := testutil.SeedProduct(t, ts.db, seller.ID, "Mug", 3, 1)

	w := uploadImage(t, ts, tok, p.ID, pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)["product"].(map[string]any)["image_path"].(string)
	assert.True(t, strings.HasPrefix(first, "/uploads/"))

	w = uploadImage(t, ts, tok, p.ID, pngBytes)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode(t, w)["product"].(map[string]any)["image_path"].(string)
	assert.NotEqual(t, first, second)

	_, err := os.Stat(filepath.Join(ts.files.Dir, filepath.Base(first)))
	assert.True(t, os.IsNotExist(err), "replaced image is removed")

	w = uploadImage(t, ts, tok, p.ID, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, s *testServer, name string, tags ...string) int64 {
	t.Helper()
	fields := map[string][]string{
		"name":        {name},
		"description": {"desc of " + name},
		"price":       {"19.99"},
	}
	if len(tags) > 0 {
		fields["tags"] = tags
	}
	w := performMultipart(t, s.router, http.MethodPost, "/api/products", fields,
		formFile{field: "image", filename: "p.png", data: pngHeader})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeJSON(t, w)["data"].(map[string]interface{})
	return int64(data["id"].(float64))
}

// ==================== 查询接口 ====================

func TestGetProducts_Pagination(t *testing.T) {
	s := setupServer(t)
	importCSV(t, s, "seed.csv", [][]string{
		{"name", "price"},
		{"A", "1"}, {"B", "2"}, {"C", "3"}, {"D", "4"}, {"E", "5"},
	})

	tests := []struct {
		name        string
		query       string
		wantLen     int
		wantPerPage float64
		wantFirst   string
	}{
		{"默认每页 2 条", "", 2, 2, "E"},
		{"per_page=5", "?per_page=5", 5, 5, "E"},
		{"非法 per_page 回落", "?per_page=7", 2, 2, "E"},
		{"第 3 页", "?page=3", 1, 2, "A"},
		{"按价格升序", "?sort=price&direction=asc&per_page=10", 5, 10, "A"},
		{"价格区间", "?min_price=2&max_price=4&per_page=10", 3, 10, "D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(s.router, http.MethodGet, "/api/products"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			body := decodeJSON(t, w)
			data := body["data"].([]interface{})
			require.Len(t, data, tt.wantLen)
			assert.Equal(t, tt.wantPerPage, body["per_page"])
			assert.Equal(t, tt.wantFirst, data[0].(map[string]interface{})["name"])
		})
	}
}

func TestGetProducts_InvalidPrice(t *testing.T) {
	s := setupServer(t)

	w := performRequest(s.router, http.MethodGet, "/api/products?max_price=cheap")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "max_price")
}

func TestGetProduct(t *testing.T) {
	s := setupServer(t)
	id := createProduct(t, s, "Widget", "red, blue")

	w := performRequest(s.router, http.MethodGet, fmt.Sprintf("/api/products/%d", id))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Widget", data["name"])
	assert.Equal(t, "19.99", data["price"])
	assert.Equal(t, []interface{}{"red", "blue"}, data["tags"])
	assert.True(t, strings.HasPrefix(data["image_url"].(string), "http://localhost:8080/storage/products/"))

	assert.Equal(t, http.StatusNotFound, performRequest(s.router, http.MethodGet, "/api/products/999").Code)
	assert.Equal(t, http.StatusBadRequest, performRequest(s.router, http.MethodGet, "/api/products/abc").Code)
}

// ==================== 写接口 ====================

func TestCreateProduct_Validation(t *testing.T) {
	s := setupServer(t)

	w := performMultipart(t, s.router, http.MethodPost, "/api/products", map[string][]string{
		"name":  {""},
		"price": {"-1"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decodeJSON(t, w)["errors"].(map[string]interface{})
	for _, field := range []string{"name", "description", "price", "image"} {
		assert.Contains(t, errs, field)
	}
}

func TestUpdateProduct(t *testing.T) {
	s := setupServer(t)
	id := createProduct(t, s, "Widget", "red")
	path := fmt.Sprintf("/api/products/%d", id)

	// tags[] 多值
	w := performMultipart(t, s.router, http.MethodPut, path, map[string][]string{
		"name":        {"Widget v2"},
		"description": {"new"},
		"price":       {"25"},
		"tags[]":      {"green", "Green", "blue"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Widget v2", data["name"])
	assert.Equal(t, "25.00", data["price"])
	assert.Equal(t, []interface{}{"green", "blue"}, data["tags"])

	// 不提交 tags 时保留
	w = performMultipart(t, s.router, http.MethodPut, path, map[string][]string{
		"name":        {"Widget v3"},
		"description": {"new"},
		"price":       {"25"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeJSON(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"green", "blue"}, data["tags"])

	w = performMultipart(t, s.router, http.MethodPut, "/api/products/999", map[string][]string{
		"name": {"x"}, "description": {"x"}, "price": {"1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	s := setupServer(t)
	id := createProduct(t, s, "Widget")
	path := fmt.Sprintf("/api/products/%d", id)

	assert.Equal(t, http.StatusOK, performRequest(s.router, http.MethodDelete, path).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(s.router, http.MethodGet, path).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(s.router, http.MethodDelete, path).Code)
}

// ==================== 标签 ====================

func TestGetTags(t *testing.T) {
	s := setupServer(t)
	createProduct(t, s, "Widget", "red, Blue")
	createProduct(t, s, "Gadget", "blue, amber")

	w := performRequest(s.router, http.MethodGet, "/api/tags")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"amber", "Blue", "red"}, decodeJSON(t, w)["data"])
}

func TestCreateProduct_ImageTooLarge(t *testing.T) {
	s := setupServer(t)

	// 超过图片上限和 multipart 预留后请求体不再读取
	big := append(append([]byte{}, pngHeader...), make([]byte, 3*1024*1024)...)
	w := performMultipart(t, s.router, http.MethodPost, "/api/products", map[string][]string{
		"name":        {"Huge"},
		"description": {"too big"},
		"price":       {"1"},
	}, formFile{field: "image", filename: "huge.png", data: big})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	errs := decodeJSON(t, w)["errors"].(map[string]interface{})
	assert.Equal(t, []interface{}{"The image field must not be greater than 2048 kilobytes."}, errs["image"])

	w = performRequest(s.router, http.MethodGet, "/api/products")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeJSON(t, w)["data"], "超限请求不应写入商品")
}

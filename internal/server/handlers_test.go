package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snackshop-dev/snackadmin/internal/models"
)

func newAdminAPI(t *testing.T) *testAPI {
	t.Helper()
	api := newTestAPI(t)
	api.LoginAs(models.SeedAdminEmail, models.SeedAdminPassword)
	return api
}

func TestSnacks(t *testing.T) {
	api := newAdminAPI(t)
	chips := api.seeded(&models.Category{}, "name = ?", "Chips")

	t.Run("list", func(t *testing.T) {
		assert.Len(t, api.APICallList(http.MethodGet, "/api/snacks", nil), 5)
		assert.Len(t, api.APICallList(http.MethodGet, "/api/snacks/category/"+chips, nil), 2)
	})

	t.Run("create validates", func(t *testing.T) {
		assert.Equal(t, "snackName is required", api.APIError(http.StatusBadRequest, http.MethodPost, "/api/snacks", map[string]any{
			"price": 1000, "categoryId": chips,
		}))
		assert.Equal(t, "Category does not exist", api.APIError(http.StatusBadRequest, http.MethodPost, "/api/snacks", map[string]any{
			"snackName": "Bim bim", "price": 1000, "categoryId": "missing",
		}))
	})

	t.Run("create update delete", func(t *testing.T) {
		created := api.APICall(http.MethodPost, "/api/snacks", map[string]any{
			"snackName": "Bim bim", "price": 5000, "stock": 3, "categoryId": chips,
		})
		id := created["id"].(string)
		assert.Equal(t, []any{}, created["images"])

		updated := api.APICall(http.MethodPut, "/api/snacks/"+id, map[string]any{
			"snackName": "Bim bim cay", "price": 6000, "stock": 30, "categoryId": chips, "images": []string{"a.png"},
		})
		assert.Equal(t, "Bim bim cay", updated["snackName"])
		assert.EqualValues(t, 30, updated["stock"])

		api.APICall(http.MethodDelete, "/api/snacks/"+id, nil)
		assert.Equal(t, "Snack not found", api.APIError(http.StatusNotFound, http.MethodGet, "/api/snacks/"+id, nil))
		api.APIError(http.StatusNotFound, http.MethodDelete, "/api/snacks/"+id, nil)
	})

	t.Run("search", func(t *testing.T) {
		found := api.APICallList(http.MethodGet, "/api/snack/search?query=S%E1%BA%A5y", nil)
		assert.Len(t, found, 2)
		assert.Empty(t, api.APICallList(http.MethodGet, "/api/snack/search?query=%25", nil))
	})

	t.Run("low stock", func(t *testing.T) {
		low := api.APICallList(http.MethodGet, "/api/snack/low-stock", nil)
		require.Len(t, low, 2)
		assert.EqualValues(t, 4, low[0]["stock"])
	})

	t.Run("top selling", func(t *testing.T) {
		top := api.APICallList(http.MethodGet, "/api/snack/top-selling", nil)
		require.Len(t, top, 2)
		assert.Equal(t, "Khoai tây chiên Poca", top[0]["snackName"])
		assert.EqualValues(t, 5, top[0]["soldCount"])
		assert.EqualValues(t, 60000, top[0]["revenue"])
	})
}

func TestCategories(t *testing.T) {
	api := newAdminAPI(t)

	upload := func(method, path string, fields map[string]string, fileName string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		for k, v := range fields {
			require.NoError(t, w.WriteField(k, v))
		}
		if fileName != "" {
			part, err := w.CreateFormFile("image", fileName)
			require.NoError(t, err)
			_, err = part.Write([]byte("\x89PNG fake"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())

		req := httptest.NewRequest(method, path, &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+api.Token)
		rec := httptest.NewRecorder()
		api.srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := upload(http.MethodPost, "/api/categories", map[string]string{"name": "Drinks", "description": "Tea and soda"}, "drinks.png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Image, "/uploads/"), created.Image)

	// The stored image is served back
	img := httptest.NewRecorder()
	api.srv.Handler().ServeHTTP(img, httptest.NewRequest(http.MethodGet, created.Image, nil))
	assert.Equal(t, http.StatusOK, img.Code)

	rec = upload(http.MethodPost, "/api/categories", map[string]string{"name": "drinks"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = upload(http.MethodPost, "/api/categories", map[string]string{"name": "Docs"}, "notes.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Updating without a file keeps the image
	rec = upload(http.MethodPut, "/api/categories/"+created.ID, map[string]string{"name": "Drinks & tea"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Drinks & tea", updated.Name)
	assert.Equal(t, created.Image, updated.Image)

	chips := api.seeded(&models.Category{}, "name = ?", "Chips")
	assert.Equal(t, "Category still has 2 snacks", api.APIError(http.StatusConflict, http.MethodDelete, "/api/categories/"+chips, nil))
	api.APICall(http.MethodDelete, "/api/categories/"+created.ID, nil)
}

func TestOrders(t *testing.T) {
	api := newAdminAPI(t)
	pending := api.seeded(&models.Order{}, "status = ?", models.OrderPending)

	t.Run("list pages newest first", func(t *testing.T) {
		resp := api.APICall(http.MethodGet, "/api/orders/all?page=1&limit=1", nil)
		assert.EqualValues(t, 2, resp["total"])
		orders := resp["orders"].([]any)
		require.Len(t, orders, 1)
		assert.Equal(t, "Nguyen An", orders[0].(map[string]any)["user"].(map[string]any)["name"])

		all := api.APICall(http.MethodGet, "/api/orders/all", nil)
		assert.Len(t, all["orders"].([]any), 2)

		tomorrow := time.Now().AddDate(0, 0, 1).Format(dayLayout)
		none := api.APICall(http.MethodGet, "/api/orders/all?startDate="+tomorrow, nil)
		assert.EqualValues(t, 0, none["total"])

		api.APIError(http.StatusBadRequest, http.MethodGet, "/api/orders/all?startDate=15/03/2026", nil)
	})

	t.Run("status transitions", func(t *testing.T) {
		assert.Equal(t, "Cannot move order from pending to completed", api.APIError(http.StatusBadRequest, http.MethodPut, "/api/orders/"+pending, map[string]any{"status": "completed"}))
		assert.Equal(t, "Order is already pending", api.APIError(http.StatusBadRequest, http.MethodPut, "/api/orders/"+pending, map[string]any{"status": "pending"}))
		api.APIError(http.StatusBadRequest, http.MethodPut, "/api/orders/"+pending, map[string]any{"status": "lost"})

		for _, status := range []string{"processing", "shipping", "completed"} {
			resp := api.APICall(http.MethodPut, "/api/orders/"+pending, map[string]any{"status": status})
			assert.Equal(t, status, resp["status"])
		}

		order := api.APICall(http.MethodGet, "/api/orders/"+pending, nil)
		assert.Equal(t, "paid", order["paymentStatus"])

		var mango models.Snack
		require.NoError(t, api.db.Where("snack_name = ?", "Xoài sấy dẻo").First(&mango).Error)
		assert.Equal(t, 2, mango.SoldCount)

		assert.Equal(t, "Cannot move order from completed to cancelled", api.APIError(http.StatusBadRequest, http.MethodPut, "/api/orders/"+pending, map[string]any{"status": "cancelled"}))
	})

	t.Run("statistics", func(t *testing.T) {
		stats := api.APICall(http.MethodGet, "/api/orders/statistics", nil)
		assert.EqualValues(t, 2, stats["total"])
		assert.EqualValues(t, 2, stats["byStatus"].(map[string]any)["completed"])
		assert.EqualValues(t, 300000, stats["totalRevenue"])

		completed := api.APICall(http.MethodGet, "/api/orders/statistics/completed", nil)
		assert.Equal(t, true, completed["success"])
		data := completed["data"].(map[string]any)
		assert.EqualValues(t, 2, data["totalCompletedOrders"])
		assert.Len(t, data["topProducts"].([]any), 3)
	})

	t.Run("by user and recent", func(t *testing.T) {
		assert.Len(t, api.APICallList(http.MethodGet, "/api/orders/user/"+api.customerID(), nil), 2)
		assert.Len(t, api.APICallList(http.MethodGet, "/api/order/recent", nil), 2)
	})

	t.Run("export", func(t *testing.T) {
		rec := api.Do(http.MethodGet, "/api/orders/export", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "id,created_at,customer"))
	})

	t.Run("delete", func(t *testing.T) {
		api.APICall(http.MethodDelete, "/api/orders/"+pending, nil)
		assert.Equal(t, "Order not found", api.APIError(http.StatusNotFound, http.MethodGet, "/api/orders/"+pending, nil))
	})
}

func TestCoupons(t *testing.T) {
	api := newAdminAPI(t)
	now := time.Now()
	coupon := func(code string, value float64, active bool) map[string]any {
		return map[string]any{
			"code": code, "discountType": "percentage", "discountValue": value,
			"startDate": now.Add(-time.Hour), "endDate": now.AddDate(0, 0, 7), "isActive": active,
		}
	}

	created := api.APICall(http.MethodPost, "/api/coupons", coupon(" summer5 ", 5, false))
	assert.Equal(t, "SUMMER5", created["code"])
	assert.Equal(t, false, created["isActive"])

	assert.Equal(t, "A coupon with this code already exists", api.APIError(http.StatusConflict, http.MethodPost, "/api/coupons", coupon("SUMMER5", 5, true)))
	assert.Equal(t, "A percentage discount cannot exceed 100", api.APIError(http.StatusBadRequest, http.MethodPost, "/api/coupons", coupon("BIG", 150, true)))

	bad := coupon("BACKWARDS", 5, true)
	bad["endDate"] = now.AddDate(0, 0, -7)
	assert.Equal(t, "endDate must be after startDate", api.APIError(http.StatusBadRequest, http.MethodPost, "/api/coupons", bad))

	updated := api.APICall(http.MethodPut, "/api/coupons/"+created["id"].(string), coupon("SUMMER5", 7, true))
	assert.EqualValues(t, 7, updated["discountValue"])
	assert.Equal(t, true, updated["isActive"])

	t.Run("validate", func(t *testing.T) {
		valid := api.APICall(http.MethodPost, "/api/coupons/validate", map[string]any{"code": "welcome10"})
		assert.Equal(t, true, valid["valid"])

		expired := api.APICall(http.MethodPost, "/api/coupons/validate", map[string]any{"code": "FREESHIP"})
		assert.Equal(t, false, expired["valid"])
		assert.Equal(t, "Coupon has expired", expired["message"])

		missing := api.APICall(http.MethodPost, "/api/coupons/validate", map[string]any{"code": "NOPE"})
		assert.Equal(t, "Coupon not found", missing["message"])
	})

	assert.Len(t, api.APICallList(http.MethodGet, "/api/coupons", nil), 3)
	api.APICall(http.MethodDelete, "/api/coupons/"+created["id"].(string), nil)
	assert.Len(t, api.APICallList(http.MethodGet, "/api/coupons", nil), 2)
}

func TestUsers(t *testing.T) {
	api := newAdminAPI(t)
	adminID := api.seeded(&models.User{}, "email = ?", models.SeedAdminEmail)

	created := api.APICall(http.MethodPost, "/api/user", map[string]any{
		"firstName": "Binh", "lastName": "Tran", "email": "Binh@Snack.vn", "phone": "0987654321",
	})
	id := created["id"].(string)
	assert.Equal(t, "binh@snack.vn", created["email"])
	assert.Equal(t, "Tran Binh", created["name"])
	assert.Equal(t, "user", created["role"])

	assert.Equal(t, "An account with this email already exists", api.APIError(http.StatusConflict, http.MethodPost, "/api/user", map[string]any{
		"firstName": "X", "lastName": "Y", "email": models.SeedUserEmail,
	}))

	updated := api.APICall(http.MethodPut, "/api/admin/users/"+id, map[string]any{
		"firstName": "Binh", "lastName": "Le", "email": "binh@snack.vn", "phone": "0987654321", "role": "user",
	})
	assert.Equal(t, "Le Binh", updated["name"])

	found := api.APICallList(http.MethodGet, "/api/user/search?query=binh", nil)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0]["id"])

	api.APICall(http.MethodPost, "/api/admin/users/"+id+"/reset-password", struct{}{})

	assert.Equal(t, "You cannot block your own account", api.APIError(http.StatusBadRequest, http.MethodPut, "/api/admin/users/"+adminID+"/status", map[string]any{"status": "blocked"}))
	assert.Equal(t, "You cannot delete your own account", api.APIError(http.StatusBadRequest, http.MethodDelete, "/api/admin/users/"+adminID, nil))

	api.APICall(http.MethodDelete, "/api/admin/users/"+id, nil)
	api.APIError(http.StatusNotFound, http.MethodGet, "/api/admin/users/"+id, nil)
	assert.Len(t, api.APICallList(http.MethodGet, "/api/admin/users", nil), 2)
}

func TestUserDeleteKeepsOrders(t *testing.T) {
	api := newAdminAPI(t)
	customer := api.customerID()

	api.APICall(http.MethodDelete, "/api/admin/users/"+customer, nil)

	resp := api.APICall(http.MethodGet, "/api/orders/all", nil)
	orders := resp["orders"].([]any)
	require.Len(t, orders, 2)
	assert.NotContains(t, orders[0].(map[string]any), "user")
	assert.Empty(t, api.APICallList(http.MethodGet, "/api/review/user/"+customer, nil))
}

func TestReviews(t *testing.T) {
	api := newAdminAPI(t)
	pending := api.seeded(&models.Review{}, "status = ?", models.ReviewPending)

	assert.Len(t, api.APICallList(http.MethodGet, "/api/review", nil), 2)
	assert.Len(t, api.APICallList(http.MethodGet, "/api/review?status=pending", nil), 1)
	assert.Len(t, api.APICallList(http.MethodGet, "/api/review/user/"+api.customerID(), nil), 2)

	resp := api.APICall(http.MethodPut, "/api/review/"+pending+"/status", map[string]any{"status": "approved"})
	assert.Equal(t, "approved", resp["status"])
	assert.Empty(t, api.APICallList(http.MethodGet, "/api/review?status=pending", nil))

	api.APIError(http.StatusBadRequest, http.MethodPut, "/api/review/"+pending+"/status", map[string]any{"status": "hidden"})
	api.APICall(http.MethodDelete, "/api/review/"+pending, nil)
	assert.Equal(t, "Review not found", api.APIError(http.StatusNotFound, http.MethodDelete, "/api/review/"+pending, nil))
}

func TestSearch(t *testing.T) {
	api := newAdminAPI(t)

	res := api.APICall(http.MethodGet, "/api/search?query=snack", nil)
	assert.NotEmpty(t, res["products"])
	assert.Len(t, res["users"].([]any), 2)
	assert.Equal(t, []any{}, res["orders"])

	onlyCoupons := api.APICall(http.MethodGet, "/api/search?query=free&type=coupons", nil)
	assert.Len(t, onlyCoupons["coupons"].([]any), 1)
	assert.Equal(t, []any{}, onlyCoupons["products"])

	api.APIError(http.StatusBadRequest, http.MethodGet, "/api/search?query=x&type=pets", nil)
	api.APIError(http.StatusBadRequest, http.MethodGet, "/api/search", nil)

	rec := api.Do(http.MethodGet, "/api/search/suggestions?query=ch", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var suggestions []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suggestions))
	assert.Contains(t, suggestions, "Chips")
}

func TestDashboard(t *testing.T) {
	api := newAdminAPI(t)
	today := time.Now().Format(dayLayout)

	stats := api.APICall(http.MethodGet, "/api/dashboard/stats", nil)
	assert.EqualValues(t, 160000, stats["totalRevenue"])
	assert.EqualValues(t, 2, stats["totalOrders"])
	assert.EqualValues(t, 5, stats["totalProducts"])
	assert.EqualValues(t, 1, stats["totalCustomers"])

	revenue := api.APICall(http.MethodGet, "/api/dashboard/revenue?startDate="+today+"&endDate="+today, nil)
	assert.Equal(t, today, revenue["startDate"])
	assert.Equal(t, today, revenue["endDate"])
	assert.EqualValues(t, 160000, revenue["total"])
	points := revenue["points"].([]any)
	require.Len(t, points, 1)
	assert.EqualValues(t, 1, points[0].(map[string]any)["orders"])

	month := api.APICall(http.MethodGet, "/api/dashboard/revenue?groupBy=month", nil)
	assert.NotEmpty(t, month["points"])
	api.APIError(http.StatusBadRequest, http.MethodGet, "/api/dashboard/revenue?groupBy=year", nil)

	orders := api.APICall(http.MethodGet, "/api/dashboard/orders?startDate="+today+"&endDate="+today, nil)
	assert.EqualValues(t, 2, orders["total"])

	products := api.APICall(http.MethodGet, "/api/dashboard/products", nil)
	assert.EqualValues(t, 5, products["total"])
	assert.EqualValues(t, 2, products["lowStock"])

	users := api.APICall(http.MethodGet, "/api/dashboard/users", nil)
	assert.EqualValues(t, 1, users["admins"])

	for _, kind := range []string{"revenue", "orders", "products", "users"} {
		rec := api.Do(http.MethodGet, "/api/dashboard/export/"+kind, nil)
		assert.Equal(t, http.StatusOK, rec.Code, kind)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), kind+".csv")
	}
	api.APIError(http.StatusBadRequest, http.MethodGet, "/api/dashboard/export/secrets", nil)
}

func TestNoRoute(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, "Route not found", api.APIError(http.StatusNotFound, http.MethodGet, "/api/nowhere", nil))
}

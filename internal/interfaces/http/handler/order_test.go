package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	orderapp "github.com/shopadmin/backend/internal/application/order"
	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/shopadmin/backend/internal/domain/shared"
	"github.com/shopadmin/backend/internal/infrastructure/persistence"
	"github.com/shopadmin/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

var orderDay = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newOrderApp(t *testing.T) *testApp {
	return newTestApp(t,
		seedUser("u1", "Ana Cruz", "ana@example.com", orderDay),
		seedUser("u2", "Ben Ode", "", orderDay),
		seedOrder("u1", "o1", "Pending", orderDay.Add(48*time.Hour)),
		seedOrder("u1", "o2", "Shipped", orderDay),
		seedOrder("u2", "o3", "Completed", orderDay.Add(24*time.Hour)),
		seedOrder("u2", "o4", "Cancelled", orderDay.Add(-24*time.Hour)),
	)
}

func decodeOrders(t *testing.T, w *httptest.ResponseRecorder) ([]orderapp.OrderView, *dto.Meta) {
	t.Helper()
	var views []orderapp.OrderView
	resp := decodeData(t, w, &views)
	return views, resp.Meta
}

func orderIDs(views []orderapp.OrderView) []string {
	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}

func TestOrderHandler_List(t *testing.T) {
	app := newOrderApp(t)
	token := app.login()

	t.Run("all statuses newest first", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/orders", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		views, meta := decodeOrders(t, w)
		assert.Equal(t, []string{"o1", "o3", "o2", "o4"}, orderIDs(views))
		require.NotNil(t, meta)
		assert.Equal(t, int64(4), meta.Total)
		assert.Equal(t, 1, meta.Page)
		assert.Equal(t, 1, meta.TotalPages)
		assert.Equal(t, "Ana Cruz", views[0].Name)
		assert.Equal(t, "No email", views[1].Email)
	})

	t.Run("status filter", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/orders?status=shipped", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		views, meta := decodeOrders(t, w)
		assert.Equal(t, []string{"o2"}, orderIDs(views))
		assert.Equal(t, int64(1), meta.Total)
	})

	t.Run("page past the end", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/orders?page=3", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		views, meta := decodeOrders(t, w)
		assert.Empty(t, views)
		assert.Equal(t, int64(4), meta.Total)
		assert.Equal(t, 3, meta.Page)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/v1/orders?status=Lost", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
	})

	t.Run("invalid page", func(t *testing.T) {
		for _, page := range []string{"0", "-1", "abc"} {
			w := app.do(http.MethodGet, "/api/v1/orders?page="+page, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, page)
		}
		w := app.do(http.MethodGet, "/api/v1/orders/history?page=0", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	app := newOrderApp(t)
	token := app.login()

	w := app.do(http.MethodGet, "/api/v1/orders/u1/o1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view orderapp.OrderView
	decodeData(t, w, &view)
	assert.Equal(t, "o1", view.ID)
	assert.Equal(t, order.StatusPending, view.Status)
	assert.Equal(t, orderapp.OriginLive, view.Origin)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "Shirt", view.Products[0].Name)

	w = app.do(http.MethodGet, "/api/v1/orders/u1/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))
}

func TestOrderHandler_ChangeStatus(t *testing.T) {
	app := newOrderApp(t)
	token := app.login()

	t.Run("moves the order and notifies", func(t *testing.T) {
		w := app.do(http.MethodPatch, "/api/v1/orders/u1/o1/status", token, jsonBody(t, ChangeStatusRequest{Status: "packed"}))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var view orderapp.OrderView
		decodeData(t, w, &view)
		assert.Equal(t, order.StatusPacked, view.Status)

		doc, err := app.store.Get(context.Background(), persistence.LiveOrdersCollection("u1"), "o1")
		require.NoError(t, err)
		assert.Equal(t, "Packed", doc.Data["status"])

		require.Len(t, app.notifier.sent, 1)
		assert.Equal(t, orderapp.StatusNotification{
			Email: "ana@example.com", Name: "Checkout o1", OrderID: "o1", Status: "Packed",
		}, app.notifier.sent[0])
	})

	t.Run("same status is rejected", func(t *testing.T) {
		w := app.do(http.MethodPatch, "/api/v1/orders/u1/o2/status", token, jsonBody(t, ChangeStatusRequest{Status: "Shipped"}))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, errorCode(t, w))
	})

	t.Run("cancelled order is read-only", func(t *testing.T) {
		w := app.do(http.MethodPatch, "/api/v1/orders/u2/o4/status", token, jsonBody(t, ChangeStatusRequest{Status: "Pending"}))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := app.do(http.MethodPatch, "/api/v1/orders/u1/o2/status", token, jsonBody(t, ChangeStatusRequest{Status: "Lost"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing order", func(t *testing.T) {
		w := app.do(http.MethodPatch, "/api/v1/orders/u1/nope/status", token, jsonBody(t, ChangeStatusRequest{Status: "Packed"}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.Len(t, app.notifier.sent, 1)
}

func TestOrderHandler_ArchiveHistoryExport(t *testing.T) {
	app := newOrderApp(t)
	token := app.login()
	ctx := context.Background()

	w := app.do(http.MethodPost, "/api/v1/orders/u1/o1/archive", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = app.do(http.MethodPost, "/api/v1/orders/u2/o3/archive", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view orderapp.OrderView
	decodeData(t, w, &view)
	assert.Equal(t, orderapp.OriginCompleted, view.Origin)
	assert.Equal(t, "Ben Ode", view.Name)

	_, err := app.store.Get(ctx, persistence.LiveOrdersCollection("u2"), "o3")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = app.store.Get(ctx, persistence.ArchiveCollection(order.ArchiveCompleted), "o3")
	require.NoError(t, err)

	// Retrying reports the archived copy.
	w = app.do(http.MethodPost, "/api/v1/orders/u2/o3/archive", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool {
		w := app.do(http.MethodGet, "/api/v1/orders/history", token, nil)
		views, _ := decodeOrders(t, w)
		return len(views) == 1 && views[0].ID == "o3"
	}, 2*time.Second, 10*time.Millisecond)

	w = app.do(http.MethodGet, "/api/v1/orders/history/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), HistoryExportFilename)

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, OrderSheetName, sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Order ID", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "o3", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "Completed", sheet.Rows[1].Cells[8].Value)
	assert.Equal(t, "49.90", sheet.Rows[1].Cells[9].Value)
}

func TestOrderHandler_ListIsJSONArrayWhenEmpty(t *testing.T) {
	app := newTestApp(t)
	token := app.login()

	w := app.do(http.MethodGet, "/api/v1/orders/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw["data"]))
}

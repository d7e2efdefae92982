package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopadmin/backend/internal/application/dashboard"
	"github.com/shopadmin/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler_Summary(t *testing.T) {
	app := newTestApp(t,
		seedUser("u1", "Ana Cruz", "ana@example.com", time.Now()),
		seedUser("u2", "Ben Ode", "", time.Now().Add(-60*24*time.Hour)),
		seedOrder("u1", "o1", "Pending", orderDay),
		seedOrder("u1", "o2", "Shipped", orderDay),
		seedOrder("u2", "o3", "Completed", orderDay),
		seedProduct("p1", "Wool Scarf", "Women"),
		seedTestimonial("t1", "Ana", 5, true),
		seedTestimonial("t2", "Ben", 2, false),
		seedTestimonial("t3", "Cleo", 4, false),
	)
	token := app.login()

	w := app.do(http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary dashboard.Summary
	decodeData(t, w, &summary)

	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, 3, summary.LiveOrders)
	assert.Equal(t, 0, summary.ArchivedOrders)
	assert.Equal(t, 1, summary.Users.Active)
	assert.Equal(t, 1, summary.Users.Inactive)
	assert.Equal(t, 1, summary.Products)
	assert.Equal(t, 1, summary.Feedback.Visible)
	assert.Equal(t, 2, summary.Feedback.Hidden)
	assert.Empty(t, summary.AdminImageURL)

	counts := make(map[order.Status]int)
	for _, c := range summary.ByStatus {
		counts[c.Status] = c.Count
	}
	assert.Len(t, summary.ByStatus, len(order.AllStatuses()))
	assert.Equal(t, 1, counts[order.StatusPending])
	assert.Equal(t, 1, counts[order.StatusShipped])
	assert.Equal(t, 1, counts[order.StatusCompleted])
	assert.Equal(t, 0, counts[order.StatusCancelled])
}

func TestDashboardHandler_RequiresSession(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

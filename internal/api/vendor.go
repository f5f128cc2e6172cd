package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/vendorhub/internal/domain"
	"github.com/jimdaga/vendorhub/internal/models"
	"github.com/jimdaga/vendorhub/internal/report"
)

func (hs *handlers) ensureUser(c *gin.Context) {
	var in domain.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid user body")
		return
	}
	user, err := hs.h.EnsureUser(c.Request.Context(), in)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (hs *handlers) listOrders(c *gin.Context) {
	orders, err := hs.h.GetOrdersByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.FilterOrdersByStatus(orders, c.Query("status")))
}

var buildOrdersWorkbook = report.BuildOrders

func (hs *handlers) exportOrders(c *gin.Context) {
	userID := c.Param("id")
	orders, err := hs.h.GetOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	orders = domain.FilterOrdersByStatus(orders, c.Query("status"))

	// Rendered in full before any byte is sent so failures still get a status
	buf, err := buildOrdersWorkbook(orders)
	if err != nil {
		hs.respondError(c, fmt.Errorf("failed to export orders for %s: %w", userID, err))
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", hs.h.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, report.ContentTypeXLSX, buf.Bytes())
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (hs *handlers) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid status body")
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		badRequest(c, fmt.Sprintf("unknown order status %q", req.Status))
		return
	}

	ctx := c.Request.Context()
	order, err := hs.h.UpdateOrderStatus(ctx, c.Param("id"), status)
	if err != nil {
		hs.respondError(c, err)
		return
	}

	if hs.enqueuer != nil {
		if err := hs.enqueuer.EnqueueRollup(ctx, order.UserID); err != nil {
			hs.logger.Warn("Failed to enqueue metrics rollup", "user_id", order.UserID, "error", err)
		}
	}
	c.JSON(http.StatusOK, order)
}

func (hs *handlers) listProducts(c *gin.Context) {
	products, err := hs.h.GetProductsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

func (hs *handlers) updateProductStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Stock == nil {
		badRequest(c, "stock is required")
		return
	}
	product, err := hs.h.UpdateProductStock(c.Request.Context(), c.Param("id"), *req.Stock)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (hs *handlers) listAnalytics(c *gin.Context) {
	points, err := hs.h.GetAnalyticsByUser(c.Request.Context(), c.Param("id"), c.Query("metric"))
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

type metricRequest struct {
	Metric string     `json:"metric"`
	Value  float64    `json:"value"`
	Date   *time.Time `json:"date"`
}

func (hs *handlers) recordMetric(c *gin.Context) {
	var req metricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid metric body")
		return
	}
	point, err := hs.h.RecordMetric(c.Request.Context(), c.Param("id"), req.Metric, req.Value, req.Date)
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, point)
}

type dashboardResponse struct {
	domain.Dashboard
	SyncStatus string `json:"syncStatus"`
}

func (hs *handlers) dashboard(c *gin.Context) {
	d, err := hs.h.GetDashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		hs.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{Dashboard: d, SyncStatus: hs.syncStatus()})
}

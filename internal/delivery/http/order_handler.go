package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/run651/rakumart-1688/internal/domain"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// respond runs call and writes its payload.
func (h *Handler) respond(c *gin.Context, status int, call func(ctx context.Context) (*domain.Payload, error)) {
	payload, err := call(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, payload)
}

// CreateOrder places a purchase order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req domain.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusCreated, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.CreateOrder(ctx, req)
	})
}

// ListOrders pages through orders.
func (h *Handler) ListOrders(c *gin.Context) {
	var req domain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.ListOrders(ctx, req)
	})
}

// OrderDetail fetches one order.
func (h *Handler) OrderDetail(c *gin.Context) {
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.OrderDetail(ctx, c.Param("sn"))
	})
}

// UpdateOrderStatus moves an order to another status.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.UpdateOrderStatus(ctx, c.Param("sn"), req.Status)
	})
}

// CancelOrder cancels an order.
func (h *Handler) CancelOrder(c *gin.Context) {
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.CancelOrder(ctx, c.Param("sn"))
	})
}

// StockList lists warehouse stock.
func (h *Handler) StockList(c *gin.Context) {
	h.respond(c, http.StatusOK, h.orders.StockList)
}

// CreatePorder places a delivery order.
func (h *Handler) CreatePorder(c *gin.Context) {
	var req domain.PorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusCreated, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.CreatePorder(ctx, req)
	})
}

// ListPorders pages through porders.
func (h *Handler) ListPorders(c *gin.Context) {
	var req domain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.ListPorders(ctx, req)
	})
}

// PorderDetail fetches one porder.
func (h *Handler) PorderDetail(c *gin.Context) {
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.PorderDetail(ctx, c.Param("sn"))
	})
}

// UpdatePorderStatus moves a porder to another status.
func (h *Handler) UpdatePorderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.UpdatePorderStatus(ctx, c.Param("sn"), req.Status)
	})
}

// CancelPorder cancels a porder.
func (h *Handler) CancelPorder(c *gin.Context) {
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.CancelPorder(ctx, c.Param("sn"))
	})
}

// TrackLogistics returns the tracking timeline of a shipment.
func (h *Handler) TrackLogistics(c *gin.Context) {
	h.respond(c, http.StatusOK, func(ctx context.Context) (*domain.Payload, error) {
		return h.orders.TrackLogistics(ctx, c.Param("express_no"))
	})
}

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduardofloriani/serverless-ecommerce/internal/audit"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/middleware"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/store"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	Store    store.KV
	Recorder EventRecorder
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(kv store.KV, rec EventRecorder) *OrderHandler {
	return &OrderHandler{Store: kv, Recorder: rec}
}

// ListOrders godoc
// @Summary      List orders
// @Description  Returns all orders, a customer's orders, or a single order
// @Tags         orders
// @Produce      json
// @Param        email    query     string  false  "Customer email"
// @Param        orderId  query     string  false  "Order ID (requires email)"
// @Success      200      {array}   models.Order
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	email := c.Query("email")
	orderID := c.Query("orderId")
	ctx := c.Request.Context()

	// A single order is addressed by (email, orderId); an orderId alone
	// cannot be resolved under the key scheme.
	if orderID != "" {
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required when orderId is given"})
			return
		}
		raw, err := h.Store.Get(ctx, store.OrderKey(email, orderID))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			log.Printf("[API] Error fetching order: %v correlation_id=%s", err, middleware.GetCorrelationID(c))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		var order models.Order
		if err := json.Unmarshal(raw, &order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
		return
	}

	prefix := store.OrderPrefix
	if email != "" {
		prefix = store.OrderEmailPrefix(email)
	}
	items, err := h.Store.Query(ctx, prefix)
	if err != nil {
		log.Printf("[API] Error listing orders: %v correlation_id=%s", err, middleware.GetCorrelationID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	orders := make([]models.Order, 0, len(items))
	for _, item := range items {
		var o models.Order
		if err := json.Unmarshal(item, &o); err != nil {
			continue
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, orders)
}

// CreateOrder godoc
// @Summary      Create a new order
// @Description  Creates an order, pricing it from the referenced products, and records an ORDER_CREATED audit event
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateOrderRequest  true  "Create order request"
// @Success      201      {object}  models.Order
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	log.Printf("[API] CreateOrder correlation_id=%s", correlationID)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	// Resolve every referenced product before persisting anything, so the
	// stored total reflects prices at creation time.
	total := 0.0
	for _, productID := range req.ProductIDs {
		raw, err := h.Store.Get(ctx, store.ProductKey(productID))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found", "productId": productID})
			return
		}
		if err != nil {
			log.Printf("[API] Error resolving product: %v correlation_id=%s", err, correlationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
			return
		}
		var p models.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
			return
		}
		total += p.Price
	}

	order := models.Order{
		ID:         uuid.New().String(),
		Email:      req.Email,
		ProductIDs: req.ProductIDs,
		Payment:    models.PaymentMethod(req.Payment),
		Status:     models.OrderStatusPending,
		Total:      total,
		CreatedAt:  time.Now().UnixMilli(),
	}

	raw, _ := json.Marshal(order)
	if err := h.Store.Put(ctx, store.OrderKey(order.Email, order.ID), raw, true); err != nil {
		log.Printf("[API] Error creating order: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	h.Recorder.Record(audit.Entry{
		EntityType: models.EntityOrder,
		EntityCode: order.ID,
		EventType:  models.EventOrderCreated,
		Email:      order.Email,
		RequestID:  correlationID,
		Info:       models.OrderEventInfo{OrderID: order.ID, ProductIDs: order.ProductIDs, Total: order.Total},
	})

	log.Printf("[API] Order created: id=%s email=%s total=%.2f correlation_id=%s",
		order.ID, order.Email, order.Total, correlationID)
	c.JSON(http.StatusCreated, order)
}

// DeleteOrder godoc
// @Summary      Delete an order
// @Description  Deletes an order addressed by email and orderId and records an ORDER_DELETED audit event
// @Tags         orders
// @Produce      json
// @Param        email    query     string  true  "Customer email"
// @Param        orderId  query     string  true  "Order ID"
// @Success      200      {object}  models.Order
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /orders [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	email := c.Query("email")
	orderID := c.Query("orderId")
	log.Printf("[API] DeleteOrder email=%s id=%s correlation_id=%s", email, orderID, correlationID)

	ctx := c.Request.Context()
	raw, err := h.Store.Get(ctx, store.OrderKey(email, orderID))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		log.Printf("[API] Error fetching order: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
		return
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
		return
	}

	err = h.Store.Delete(ctx, store.OrderKey(email, orderID))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err != nil {
		log.Printf("[API] Error deleting order: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete order"})
		return
	}

	h.Recorder.Record(audit.Entry{
		EntityType: models.EntityOrder,
		EntityCode: order.ID,
		EventType:  models.EventOrderDeleted,
		Email:      order.Email,
		RequestID:  correlationID,
		Info:       models.OrderEventInfo{OrderID: order.ID, ProductIDs: order.ProductIDs, Total: order.Total},
	})

	log.Printf("[API] Order deleted: id=%s email=%s correlation_id=%s", order.ID, order.Email, correlationID)
	c.JSON(http.StatusOK, order)
}

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eduardofloriani/serverless-ecommerce/internal/audit"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/middleware"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
	"github.com/eduardofloriani/serverless-ecommerce/pkg/store"
)

// EventRecorder defines the interface for recording audit events.
type EventRecorder interface {
	Record(e audit.Entry)
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	Store    store.KV
	Recorder EventRecorder
	// AdminEmail is recorded on catalog mutations when the caller identity
	// header is absent.
	AdminEmail string
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(kv store.KV, rec EventRecorder, adminEmail string) *ProductHandler {
	return &ProductHandler{Store: kv, Recorder: rec, AdminEmail: adminEmail}
}

// codeRef is the item stored under a product code reservation key.
type codeRef struct {
	ID string `json:"id"`
}

func (h *ProductHandler) actor(c *gin.Context) string {
	if email := middleware.GetActorEmail(c); email != "" {
		return email
	}
	return h.AdminEmail
}

// ListProducts godoc
// @Summary      List all products
// @Description  Returns all catalog products
// @Tags         products
// @Produce      json
// @Success      200  {array}   models.Product
// @Failure      500  {object}  map[string]string
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	items, err := h.Store.Query(c.Request.Context(), store.ProductPrefix)
	if err != nil {
		log.Printf("[API] Error listing products: %v correlation_id=%s", err, middleware.GetCorrelationID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		var p models.Product
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Description  Returns a single product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  models.Product
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.loadProduct(c, c.Param("id"))
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary      Create a new product
// @Description  Creates a product and records a PRODUCT_CREATED audit event
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request  body      models.ProductRequest  true  "Create product request"
// @Success      201      {object}  models.Product
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	log.Printf("[API] CreateProduct correlation_id=%s", correlationID)

	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be >= 0"})
		return
	}

	product := models.Product{
		ID:          req.ID,
		ProductName: req.ProductName,
		Code:        req.Code,
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if req.Model != nil {
		product.Model = *req.Model
	}
	if req.ProductURL != nil {
		product.ProductURL = *req.ProductURL
	}
	if req.Price != nil {
		product.Price = *req.Price
	}

	ctx := c.Request.Context()

	// Reserve the code first; a duplicate code must never silently
	// overwrite another product.
	codeItem, _ := json.Marshal(codeRef{ID: product.ID})
	err := h.Store.Put(ctx, store.ProductCodeKey(product.Code), codeItem, true)
	if errors.Is(err, store.ErrConditionFailed) {
		c.JSON(http.StatusConflict, gin.H{"error": "product code already exists"})
		return
	}
	if err != nil {
		log.Printf("[API] Error reserving product code: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	raw, _ := json.Marshal(product)
	err = h.Store.Put(ctx, store.ProductKey(product.ID), raw, true)
	if err != nil {
		// Release the reservation so the code stays usable.
		_ = h.Store.Delete(ctx, store.ProductCodeKey(product.Code))
		if errors.Is(err, store.ErrConditionFailed) {
			c.JSON(http.StatusConflict, gin.H{"error": "product already exists"})
			return
		}
		log.Printf("[API] Error creating product: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	h.Recorder.Record(audit.Entry{
		EntityType: models.EntityProduct,
		EntityCode: product.Code,
		EventType:  models.EventProductCreated,
		Email:      h.actor(c),
		RequestID:  correlationID,
		Info:       models.ProductEventInfo{ProductID: product.ID, Price: product.Price},
	})

	log.Printf("[API] Product created: id=%s code=%s correlation_id=%s", product.ID, product.Code, correlationID)
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary      Update an existing product
// @Description  Updates a product and records a PRODUCT_UPDATED audit event
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Product ID"
// @Param        request  body      models.ProductRequest  true  "Update product request"
// @Success      200      {object}  models.Product
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	productID := c.Param("id")
	log.Printf("[API] UpdateProduct id=%s correlation_id=%s", productID, correlationID)

	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be >= 0"})
		return
	}

	existing, err := h.loadProduct(c, productID)
	if err != nil {
		return
	}

	ctx := c.Request.Context()

	// Apply updates
	product := existing
	product.ProductName = req.ProductName
	product.Code = req.Code
	if req.Model != nil {
		product.Model = *req.Model
	}
	if req.ProductURL != nil {
		product.ProductURL = *req.ProductURL
	}
	if req.Price != nil {
		product.Price = *req.Price
	}

	if product.Code != existing.Code {
		codeItem, _ := json.Marshal(codeRef{ID: product.ID})
		err := h.Store.Put(ctx, store.ProductCodeKey(product.Code), codeItem, true)
		if errors.Is(err, store.ErrConditionFailed) {
			c.JSON(http.StatusConflict, gin.H{"error": "product code already exists"})
			return
		}
		if err != nil {
			log.Printf("[API] Error reserving product code: %v correlation_id=%s", err, correlationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			return
		}
	}

	raw, _ := json.Marshal(product)
	if err := h.Store.Put(ctx, store.ProductKey(product.ID), raw, false); err != nil {
		if product.Code != existing.Code {
			// Release the new reservation so the code stays usable.
			_ = h.Store.Delete(ctx, store.ProductCodeKey(product.Code))
		}
		log.Printf("[API] Error updating product: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if product.Code != existing.Code {
		// Old reservation is released best-effort after the write.
		_ = h.Store.Delete(ctx, store.ProductCodeKey(existing.Code))
	}

	h.Recorder.Record(audit.Entry{
		EntityType: models.EntityProduct,
		EntityCode: product.Code,
		EventType:  models.EventProductUpdated,
		Email:      h.actor(c),
		RequestID:  correlationID,
		Info:       models.ProductEventInfo{ProductID: product.ID, Price: product.Price},
	})

	log.Printf("[API] Product updated: id=%s correlation_id=%s", product.ID, correlationID)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Description  Deletes a product and records a PRODUCT_DELETED audit event
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  models.Product
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	productID := c.Param("id")
	log.Printf("[API] DeleteProduct id=%s correlation_id=%s", productID, correlationID)

	product, err := h.loadProduct(c, productID)
	if err != nil {
		return
	}

	ctx := c.Request.Context()
	err = h.Store.Delete(ctx, store.ProductKey(productID))
	if errors.Is(err, store.ErrNotFound) {
		// Lost a race with a concurrent delete; that request emits the event.
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		log.Printf("[API] Error deleting product: %v correlation_id=%s", err, correlationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	_ = h.Store.Delete(ctx, store.ProductCodeKey(product.Code))

	h.Recorder.Record(audit.Entry{
		EntityType: models.EntityProduct,
		EntityCode: product.Code,
		EventType:  models.EventProductDeleted,
		Email:      h.actor(c),
		RequestID:  correlationID,
		Info:       models.ProductEventInfo{ProductID: product.ID, Price: product.Price},
	})

	log.Printf("[API] Product deleted: id=%s correlation_id=%s", product.ID, correlationID)
	c.JSON(http.StatusOK, product)
}

// loadProduct fetches a product by id, writing the error response itself when
// the product is absent or the store fails.
func (h *ProductHandler) loadProduct(c *gin.Context, id string) (models.Product, error) {
	raw, err := h.Store.Get(c.Request.Context(), store.ProductKey(id))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return models.Product{}, err
	}
	if err != nil {
		log.Printf("[API] Error fetching product: %v correlation_id=%s", err, middleware.GetCorrelationID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return models.Product{}, err
	}

	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch product"})
		return models.Product{}, err
	}
	return product, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/middleware"
)

// route binds one (method, path) pair to a handler, with the schemas the
// request must satisfy before the handler runs.
type route struct {
	method  string
	path    string
	body    Schema // request body schema, nil when the route takes no body
	params  Schema // query-parameter schema, nil when none required
	handler gin.HandlerFunc
}

func routes(p *ProductHandler, o *OrderHandler) []route {
	return []route{
		{http.MethodGet, "/products", nil, nil, p.ListProducts},
		{http.MethodGet, "/products/:id", nil, nil, p.GetProduct},
		{http.MethodPost, "/products", productSchema, nil, p.CreateProduct},
		{http.MethodPut, "/products/:id", productSchema, nil, p.UpdateProduct},
		{http.MethodDelete, "/products/:id", nil, nil, p.DeleteProduct},
		{http.MethodGet, "/orders", nil, nil, o.ListOrders},
		{http.MethodPost, "/orders", orderCreationSchema, nil, o.CreateOrder},
		{http.MethodDelete, "/orders", nil, orderDeletionParams, o.DeleteOrder},
	}
}

// NewRouter creates and configures the Gin router.
func NewRouter(p *ProductHandler, o *OrderHandler) *gin.Engine {
	r := gin.Default()

	// Middleware
	r.Use(middleware.CorrelationID())
	r.Use(middleware.ActorEmail())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Business routes
	for _, rt := range routes(p, o) {
		r.Handle(rt.method, rt.path, validated(rt))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}

// validated wraps a route handler with its schema checks. Validation runs in
// full before the handler; a failing request never touches the store.
func validated(rt route) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rt.params != nil {
			if errs := rt.params.ValidateParams(c.Request.URL.Query()); len(errs) > 0 {
				respondValidation(c, errs)
				return
			}
		}
		if rt.body != nil {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
				return
			}
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
				return
			}
			if errs := rt.body.Validate(body); len(errs) > 0 {
				respondValidation(c, errs)
				return
			}
			// Hand the body back to the handler for its typed decode.
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		}
		rt.handler(c)
	}
}

func respondValidation(c *gin.Context, errs []FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": errs})
}

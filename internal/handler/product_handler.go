package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"inventory-service/internal/catalog"
	"inventory-service/internal/model"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Unit     string  `json:"unit"`
	Category string  `json:"category" validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// ProductHandler serves the product catalog endpoints on top of the
// catalog repository. The repository serializes mutations internally,
// so concurrent HTTP calls are safe.
type ProductHandler struct {
	repo *catalog.Repository
}

func NewProductHandler(repo *catalog.Repository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// ListProducts handles retrieving all products with optional search filtering
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)

	query := c.QueryParam("q")
	if query != "" {
		log.Info("Searching products", zap.String("query", query))
		prometheus.SearchQueriesCounter.Inc()
	}

	products := h.repo.Search(query)

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	product, err := h.repo.Get(id)
	if err != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	return c.JSON(http.StatusOK, product)
}

// GetPriceHistory returns the product's price timeline, oldest first.
func (h *ProductHandler) GetPriceHistory(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	if _, err := h.repo.Get(id); err != nil {
		log.Warn("Product not found for price history", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	history := h.repo.PriceHistoryOf(id)
	if history == nil {
		history = []model.PriceHistory{}
	}

	log.Info("Price history retrieved",
		zap.String("product_id", id),
		zap.Int("entries", len(history)))
	return c.JSON(http.StatusOK, history)
}

// CreateProduct handles creating a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Creating new product")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	product, err := h.repo.Create(c.Request().Context(), catalog.Draft{
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateCode) {
			log.Warn("Product code collision", zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product code already in use",
			})
		}
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	prometheus.RecordProductOperation("create")
	log.Info("Product created successfully",
		zap.String("product_id", product.ID),
		zap.String("code", product.Code),
		zap.String("name", product.Name))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	log.Info("Updating product", zap.String("product_id", id))

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	existing, err := h.repo.Get(id)
	if err != nil {
		log.Warn("Product not found for update", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}
	oldPrice := existing.Price

	existing.Name = req.Name
	existing.Unit = req.Unit
	existing.Category = req.Category
	existing.Quantity = req.Quantity
	existing.Price = req.Price

	product, err := h.repo.Update(c.Request().Context(), existing)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Product not found",
			})
		}
		log.Error("Failed to update product",
			zap.String("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	prometheus.RecordProductOperation("update")
	if oldPrice != product.Price {
		prometheus.PriceChangesCounter.Inc()
	}
	log.Info("Product updated successfully",
		zap.String("product_id", id),
		zap.String("name", product.Name),
		zap.Float64("old_price", oldPrice),
		zap.Float64("new_price", product.Price))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product along with its price
// history. Deleting an unknown id is a no-op, not an error.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	log.Info("Deleting product", zap.String("product_id", id))

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		log.Error("Failed to delete product",
			zap.String("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}

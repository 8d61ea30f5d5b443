package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"pasar/internal/middleware"
	"pasar/internal/store"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	manager  *store.Manager
	validate *validator.Validate
	log      zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(manager *store.Manager, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		manager:  manager,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The static
// routes are registered before "/:id" so they are not shadowed.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/sales", h.HandleTotalQuantitySold)
	productRoutes.Post("/bulk-delete", h.HandleBulkDeleteProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id/stock", h.HandleUpdateProductStock)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// CreateProductRequest represents the request body for product creation.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "Validation failed", err)
	}

	product, err := h.manager.CreateProduct(req.Name, req.Description, req.Price, req.Stock, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("failed to create product")
		return errorResponse(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleListProducts lists products with pagination, optional price bounds
// and search.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	params := store.ListProductsParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 10),
		MinPrice: queryFloat(c, "min_price"),
		MaxPrice: queryFloat(c, "max_price"),
		Search:   c.Query("search"),
	}

	result, err := h.manager.ListProducts(params)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list products")
		return errorResponse(c, "Could not list products", err)
	}
	return c.JSON(result)
}

// HandleGetProduct retrieves a single product by ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid product ID", err)
	}

	product, err := h.manager.GetProduct(id)
	if err != nil {
		h.log.Error().Err(err).Uint("product_id", id).Msg("failed to get product")
		return errorResponse(c, "Could not retrieve product", err)
	}
	if product == nil {
		return notFoundResponse(c, "Product not found")
	}
	return c.JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid product ID", err)
	}

	var upd store.ProductUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}

	product, err := h.manager.UpdateProduct(id, upd, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("product_id", id).Msg("failed to update product")
		return errorResponse(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// StockUpdateRequest represents a signed stock adjustment with its reason.
type StockUpdateRequest struct {
	Change int    `json:"change" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// HandleUpdateProductStock applies a signed stock change.
func (h *ProductHandler) HandleUpdateProductStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid product ID", err)
	}

	var req StockUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "Change and reason are required", err)
	}

	product, err := h.manager.UpdateProductStock(id, req.Change, req.Reason, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("product_id", id).Msg("failed to update stock")
		return errorResponse(c, "Could not update stock", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product, optionally forcing deletion of
// products referenced by orders.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid product ID", err)
	}

	force := c.QueryBool("force", false)
	if err := h.manager.DeleteProduct(id, force, middleware.Actor(c)); err != nil {
		h.log.Error().Err(err).Uint("product_id", id).Msg("failed to delete product")
		return errorResponse(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// BulkDeleteRequest represents the request body for bulk product deletion.
type BulkDeleteRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// HandleBulkDeleteProducts deletes several products in one transaction.
func (h *ProductHandler) HandleBulkDeleteProducts(c *fiber.Ctx) error {
	var req BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "At least one product ID is required", err)
	}

	result, err := h.manager.BulkDeleteProducts(req.IDs, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to bulk delete products")
		return errorResponse(c, "Could not delete products", err)
	}
	return c.JSON(result)
}

// HandleTotalQuantitySold reports the total quantity sold per product.
func (h *ProductHandler) HandleTotalQuantitySold(c *fiber.Ctx) error {
	sales, err := h.manager.GetTotalQuantitySold()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to aggregate quantity sold")
		return errorResponse(c, "Could not retrieve sales totals", err)
	}
	return c.JSON(sales)
}

package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"pasar/internal/middleware"
	"pasar/internal/store"
)

// OrderHandler handles HTTP requests for orders and order items.
type OrderHandler struct {
	manager  *store.Manager
	validate *validator.Validate
	log      zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(manager *store.Manager, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		manager:  manager,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Patch("/items/:id", h.HandleUpdateOrderItem)
	orderRoutes.Delete("/items/:id", h.HandleDeleteOrderItem)
}

// CreateOrderRequest represents the request body for order creation.
type CreateOrderRequest struct {
	UserID uint                   `json:"user_id" validate:"required"`
	Items  []store.OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder creates a new order with its items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "UserID and at least one item are required", err)
	}

	order, err := h.manager.CreateOrder(req.UserID, req.Items, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", req.UserID).Msg("failed to create order")
		return errorResponse(c, "Could not create order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder retrieves an order with its items eagerly loaded.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid order ID", err)
	}

	order, err := h.manager.GetOrderWithItems(id)
	if err != nil {
		h.log.Error().Err(err).Uint("order_id", id).Msg("failed to get order")
		return errorResponse(c, "Could not retrieve order", err)
	}
	if order == nil {
		return notFoundResponse(c, "Order not found")
	}
	return c.JSON(order)
}

// StatusUpdateRequest represents the request body for a status change.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus reassigns an order's status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid order ID", err)
	}

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "Status is required", err)
	}

	order, err := h.manager.UpdateOrderStatus(id, req.Status, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("order_id", id).Msg("failed to update order status")
		return errorResponse(c, "Could not update order status", err)
	}
	return c.JSON(order)
}

// QuantityUpdateRequest represents the request body for an item quantity
// change.
type QuantityUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// HandleUpdateOrderItem changes an order item's quantity.
func (h *OrderHandler) HandleUpdateOrderItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid order item ID", err)
	}

	var req QuantityUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequestResponse(c, "Quantity must be greater than zero", err)
	}

	item, err := h.manager.UpdateOrderItem(id, req.Quantity, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("item_id", id).Msg("failed to update order item")
		return errorResponse(c, "Could not update order item", err)
	}
	return c.JSON(item)
}

// HandleDeleteOrder deletes an order, returning stock to inventory.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid order ID", err)
	}

	if err := h.manager.DeleteOrder(id, middleware.Actor(c)); err != nil {
		h.log.Error().Err(err).Uint("order_id", id).Msg("failed to delete order")
		return errorResponse(c, "Could not delete order", err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted successfully"})
}

// HandleDeleteOrderItem deletes a single order item, returning its quantity
// to stock.
func (h *OrderHandler) HandleDeleteOrderItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid order item ID", err)
	}

	if err := h.manager.DeleteOrderItem(id, middleware.Actor(c)); err != nil {
		h.log.Error().Err(err).Uint("item_id", id).Msg("failed to delete order item")
		return errorResponse(c, "Could not delete order item", err)
	}
	return c.JSON(fiber.Map{"message": "Order item deleted successfully"})
}

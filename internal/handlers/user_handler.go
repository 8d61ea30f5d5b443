package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"pasar/internal/middleware"
	"pasar/internal/store"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	manager *store.Manager
	log     zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(manager *store.Manager, log zerolog.Logger) *UserHandler {
	return &UserHandler{manager: manager, log: log}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Get("/:id/orders", h.HandleGetUserOrders)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
	userRoutes.Post("/:id/soft-delete", h.HandleSoftDeleteUser)
}

// HandleListUsers lists users with pagination and optional search.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	result, err := h.manager.ListUsers(page, pageSize, c.Query("search"))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		return errorResponse(c, "Could not list users", err)
	}
	return c.JSON(result)
}

// HandleGetUser retrieves a single user by ID.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid user ID", err)
	}

	user, err := h.manager.GetUser(id)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", id).Msg("failed to get user")
		return errorResponse(c, "Could not retrieve user", err)
	}
	if user == nil {
		return notFoundResponse(c, "User not found")
	}
	return c.JSON(user)
}

// HandleGetUserOrders lists a user's orders with item counts and totals.
func (h *UserHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid user ID", err)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 10)

	result, err := h.manager.GetUserOrders(id, page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", id).Msg("failed to get user orders")
		return errorResponse(c, "Could not retrieve user orders", err)
	}
	return c.JSON(result)
}

// HandleUpdateUser applies a partial update to a user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid user ID", err)
	}

	var upd store.UserUpdate
	if err := c.BodyParser(&upd); err != nil {
		return badRequestResponse(c, "Invalid request body", err)
	}

	user, err := h.manager.UpdateUser(id, upd, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", id).Msg("failed to update user")
		return errorResponse(c, "Could not update user", err)
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user, cascading to their orders when requested
// via the cascade query parameter.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid user ID", err)
	}

	cascade := c.QueryBool("cascade", false)
	if err := h.manager.DeleteUser(id, cascade, middleware.Actor(c)); err != nil {
		h.log.Error().Err(err).Uint("user_id", id).Msg("failed to delete user")
		return errorResponse(c, "Could not delete user", err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// HandleSoftDeleteUser marks a user inactive, keeping the row.
func (h *UserHandler) HandleSoftDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequestResponse(c, "Invalid user ID", err)
	}

	user, err := h.manager.SoftDeleteUser(id, middleware.Actor(c))
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", id).Msg("failed to soft delete user")
		return errorResponse(c, "Could not soft delete user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User soft deleted successfully",
		"user":    user,
	})
}

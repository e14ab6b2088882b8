package handlers

import (
	"github.com/LukeA4591/GameTroveAPI/internal/middleware"
	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/gofiber/fiber/v2"
)

var (
	addWishlistStatuses = map[models.ResultCode]int{
		models.ResultGameAdded:           fiber.StatusOK,
		models.ResultGameDNE:             fiber.StatusNotFound,
		models.ResultGameCreator:         fiber.StatusForbidden,
		models.ResultGameAlreadyOwned:    fiber.StatusForbidden,
		models.ResultGameAlreadyWishlist: fiber.StatusBadRequest,
	}
	addOwnedStatuses = map[models.ResultCode]int{
		models.ResultGameAdded:        fiber.StatusOK,
		models.ResultGameDNE:          fiber.StatusNotFound,
		models.ResultGameCreator:      fiber.StatusForbidden,
		models.ResultGameAlreadyOwned: fiber.StatusBadRequest,
	}
	removeStatuses = map[models.ResultCode]int{
		models.ResultSuccess: fiber.StatusOK,
		models.ResultGameDNE: fiber.StatusNotFound,
		models.ResultGameNot: fiber.StatusForbidden,
	}
)

// LedgerHandler handles the owned and wishlist endpoints.
type LedgerHandler struct {
	service *services.LedgerService
}

func NewLedgerHandler(service *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RegisterRoutes registers the ledger routes. Every route requires auth.
func (h *LedgerHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	gameRoutes := router.Group("/games")
	gameRoutes.Post("/:id/wishlist", auth, h.HandleAddToWishlist)
	gameRoutes.Delete("/:id/wishlist", auth, h.remove(models.CollectionWishlist))
	gameRoutes.Post("/:id/owned", auth, h.HandleAddToOwned)
	gameRoutes.Delete("/:id/owned", auth, h.remove(models.CollectionOwned))
}

func (h *LedgerHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}
	code, err := h.service.AddToWishlist(c.UserContext(), gameID, userID)
	if err != nil {
		return errorResponse(c, "Could not add game to wishlist", err)
	}
	return resultResponse(c, code, addWishlistStatuses)
}

func (h *LedgerHandler) HandleAddToOwned(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}
	code, err := h.service.AddToOwned(c.UserContext(), gameID, userID)
	if err != nil {
		return errorResponse(c, "Could not mark game as owned", err)
	}
	return resultResponse(c, code, addOwnedStatuses)
}

func (h *LedgerHandler) remove(collection models.Collection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := middleware.UserID(c)
		gameID, err := idParam(c, "id")
		if err != nil {
			return badRequest(c, "Invalid game id", err)
		}
		code, err := h.service.Remove(c.UserContext(), collection, gameID, userID)
		if err != nil {
			return errorResponse(c, "Could not remove game from "+string(collection), err)
		}
		return resultResponse(c, code, removeStatuses)
	}
}

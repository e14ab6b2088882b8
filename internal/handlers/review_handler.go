package handlers

import (
	"github.com/LukeA4591/GameTroveAPI/internal/middleware"
	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var addReviewStatuses = map[models.ResultCode]int{
	models.ResultSuccess:  fiber.StatusCreated,
	models.ResultGameDNE:  fiber.StatusNotFound,
	models.ResultCreator:  fiber.StatusForbidden,
	models.ResultReviewed: fiber.StatusForbidden,
}

// ReviewHandler handles HTTP requests for game reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ReviewHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/games/:id/reviews", h.HandleGetReviews)
	router.Post("/games/:id/reviews", auth, h.HandleAddReview)
}

func (h *ReviewHandler) HandleGetReviews(c *fiber.Ctx) error {
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}
	reviews, err := h.service.List(c.UserContext(), gameID)
	if err != nil {
		return errorResponse(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// AddReviewRequest represents the request body for reviewing a game.
type AddReviewRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=10"`
	Review *string `json:"review" validate:"omitempty,max=512"`
}

func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}

	var req AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	code, err := h.service.Add(c.UserContext(), gameID, userID, req.Rating, req.Review)
	if err != nil {
		return errorResponse(c, "Could not add review", err)
	}
	return resultResponse(c, code, addReviewStatuses)
}

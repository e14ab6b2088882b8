package handlers

import (
	"github.com/LukeA4591/GameTroveAPI/internal/middleware"
	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	createGameStatuses = map[models.ResultCode]int{
		models.ResultSuccess:         fiber.StatusCreated,
		models.ResultTitleExists:     fiber.StatusForbidden,
		models.ResultInvalidGenre:    fiber.StatusBadRequest,
		models.ResultInvalidPlatform: fiber.StatusBadRequest,
	}
	editGameStatuses = map[models.ResultCode]int{
		models.ResultSuccess:         fiber.StatusOK,
		models.ResultGameDNE:         fiber.StatusNotFound,
		models.ResultNotCreator:      fiber.StatusForbidden,
		models.ResultTitleExists:     fiber.StatusForbidden,
		models.ResultInvalidGenre:    fiber.StatusBadRequest,
		models.ResultInvalidPlatform: fiber.StatusBadRequest,
	}
	deleteGameStatuses = map[models.ResultCode]int{
		models.ResultSuccess:      fiber.StatusOK,
		models.ResultGameDNE:      fiber.StatusNotFound,
		models.ResultNotCreator:   fiber.StatusForbidden,
		models.ResultGameReviewed: fiber.StatusForbidden,
	}
)

// GameHandler handles HTTP requests for the game catalogue.
type GameHandler struct {
	service  *services.GameService
	validate *validator.Validate
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(service *services.GameService) *GameHandler {
	return &GameHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the game routes. Mutations sit behind auth.
func (h *GameHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	gameRoutes := router.Group("/games")
	gameRoutes.Get("/", h.HandleSearch)
	gameRoutes.Get("/genres", h.HandleGetGenres)
	gameRoutes.Get("/platforms", h.HandleGetPlatforms)
	gameRoutes.Get("/:id", h.HandleGetGame)
	gameRoutes.Post("/", auth, h.HandleCreateGame)
	gameRoutes.Patch("/:id", auth, h.HandleEditGame)
	gameRoutes.Delete("/:id", auth, h.HandleDeleteGame)
}

type searchQuery struct {
	Q          string `validate:"max=64"`
	SortBy     string `validate:"max=32"`
	MaxPrice   *int   `validate:"omitempty,gte=0"`
	StartIndex *int   `validate:"omitempty,gte=0"`
	Count      *int   `validate:"omitempty,gte=0"`
}

// HandleSearch runs a filtered, sorted, paginated game search.
func (h *GameHandler) HandleSearch(c *fiber.Ctx) error {
	params, err := h.parseSearch(c)
	if err != nil {
		return badRequest(c, "Invalid search parameters", err)
	}
	query := searchQuery{Q: params.Query, SortBy: params.SortBy, MaxPrice: params.MaxPrice, StartIndex: params.StartIndex, Count: params.Count}
	if err := h.validate.Struct(query); err != nil {
		return validationResponse(c, err)
	}

	result, err := h.service.Search(c.UserContext(), params)
	if err != nil {
		return errorResponse(c, "Could not search games", err)
	}
	return c.JSON(result)
}

func (h *GameHandler) parseSearch(c *fiber.Ctx) (services.SearchParams, error) {
	p := services.SearchParams{
		Query:  c.Query("q"),
		SortBy: c.Query("sortBy"),
		Token:  middleware.TokenFromRequest(c),
	}
	var err error
	if p.GenreIDs, err = queryIDs(c, "genreIds"); err != nil {
		return p, err
	}
	if p.PlatformIDs, err = queryIDs(c, "platformIds"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = queryInt(c, "price"); err != nil {
		return p, err
	}
	if p.CreatorID, err = queryUint(c, "creatorId"); err != nil {
		return p, err
	}
	if p.ReviewerID, err = queryUint(c, "reviewerId"); err != nil {
		return p, err
	}
	if p.StartIndex, err = queryInt(c, "startIndex"); err != nil {
		return p, err
	}
	if p.Count, err = queryInt(c, "count"); err != nil {
		return p, err
	}
	if p.OwnedByMe, err = queryBool(c, "ownedByMe"); err != nil {
		return p, err
	}
	if p.WishlistedByMe, err = queryBool(c, "wishlistedByMe"); err != nil {
		return p, err
	}
	return p, nil
}

// HandleGetGame returns the detail view of one game.
func (h *GameHandler) HandleGetGame(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}
	game, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, "Could not retrieve game", err)
	}
	return c.JSON(game)
}

func (h *GameHandler) HandleGetGenres(c *fiber.Ctx) error {
	genres, err := h.service.ListGenres(c.UserContext())
	if err != nil {
		return errorResponse(c, "Could not retrieve genres", err)
	}
	return c.JSON(genres)
}

func (h *GameHandler) HandleGetPlatforms(c *fiber.Ctx) error {
	platforms, err := h.service.ListPlatforms(c.UserContext())
	if err != nil {
		return errorResponse(c, "Could not retrieve platforms", err)
	}
	return c.JSON(platforms)
}

// CreateGameRequest represents the request body for creating a game.
type CreateGameRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"max=1024"`
	GenreID     uint   `json:"genreId" validate:"required"`
	Price       *int   `json:"price" validate:"required,gte=0"`
	PlatformIDs []uint `json:"platformIds" validate:"required,min=1"`
}

// HandleCreateGame creates a game owned by the caller.
func (h *GameHandler) HandleCreateGame(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	var req CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	gameID, code, err := h.service.Create(c.UserContext(), userID, services.CreateGameInput{
		Title:       req.Title,
		Description: req.Description,
		GenreID:     req.GenreID,
		Price:       *req.Price,
		PlatformIDs: req.PlatformIDs,
	})
	if err != nil {
		return errorResponse(c, "Could not create game", err)
	}
	if code == models.ResultSuccess {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"gameId": gameID})
	}
	return resultResponse(c, code, createGameStatuses)
}

// EditGameRequest represents a partial game update.
type EditGameRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=1024"`
	GenreID     *uint   `json:"genreId" validate:"omitempty,gt=0"`
	Price       *int    `json:"price" validate:"omitempty,gte=0"`
	PlatformIDs []uint  `json:"platformIds"`
}

func (h *GameHandler) HandleEditGame(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}

	var req EditGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	code, err := h.service.Edit(c.UserContext(), gameID, userID, services.EditGameInput{
		Title:       req.Title,
		Description: req.Description,
		GenreID:     req.GenreID,
		Price:       req.Price,
		PlatformIDs: req.PlatformIDs,
	})
	if err != nil {
		return errorResponse(c, "Could not update game", err)
	}
	return resultResponse(c, code, editGameStatuses)
}

func (h *GameHandler) HandleDeleteGame(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	gameID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid game id", err)
	}

	code, err := h.service.Delete(c.UserContext(), gameID, userID)
	if err != nil {
		return errorResponse(c, "Could not delete game", err)
	}
	return resultResponse(c, code, deleteGameStatuses)
}

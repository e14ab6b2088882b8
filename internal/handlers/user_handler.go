package handlers

import (
	"github.com/LukeA4591/GameTroveAPI/internal/middleware"
	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles registration, sessions and profiles.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/register", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Post("/logout", auth, h.HandleLogout)
	userRoutes.Get("/:id", h.HandleView)
	userRoutes.Patch("/:id", auth, h.HandleUpdate)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=64"`
	LastName  string `json:"lastName" validate:"required,min=1,max=64"`
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required,min=6,max=64"`
}

// HandleRegister handles new user registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	userID, code, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return errorResponse(c, "Could not register user", err)
	}
	if code == models.ResultEmailInUse {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Registration failed",
			"result":  code,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"userId": userID})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a session token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	session, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return errorResponse(c, "Authentication failed", err)
	}
	return c.JSON(session)
}

func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.TokenFromRequest(c)); err != nil {
		return errorResponse(c, "Could not log out", err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleView returns a profile; the email is only shown to its owner.
func (h *UserHandler) HandleView(c *fiber.Ctx) error {
	userID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid user id", err)
	}
	view, err := h.authService.View(c.UserContext(), userID, middleware.TokenFromRequest(c))
	if err != nil {
		return errorResponse(c, "Could not retrieve user", err)
	}
	return c.JSON(view)
}

// UpdateUserRequest represents a partial profile update.
type UpdateUserRequest struct {
	FirstName       *string `json:"firstName" validate:"omitempty,min=1,max=64"`
	LastName        *string `json:"lastName" validate:"omitempty,min=1,max=64"`
	Email           *string `json:"email" validate:"omitempty,email,max=256"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=64"`
	CurrentPassword *string `json:"currentPassword"`
}

func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	requesterID, _ := middleware.UserID(c)
	userID, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid user id", err)
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	err = h.authService.Update(c.UserContext(), userID, requesterID, services.UpdateUserInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		return errorResponse(c, "Could not update user", err)
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

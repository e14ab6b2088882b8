package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/models"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput holds the fields of a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateUserInput is a partial account update. Changing the password
// requires the current one.
type UpdateUserInput struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Password        *string
	CurrentPassword *string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	base
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, opts ...Option) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		base:       newBase(opts),
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenTTL,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (uint, models.ResultCode, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return 0, models.ResultEmailInUse, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return 0, "", transient("check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Password:  string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return 0, models.ResultEmailInUse, nil
		}
		return 0, "", transient("register user", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	s.publish(EventUserRegistered, 0, user.ID)
	return user.ID, models.ResultSuccess, nil
}

// Login checks the credentials and starts a new session, replacing any
// previous one.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, transient("login", err)
		}
		s.metrics.CountAuth("failure")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.metrics.CountAuth("failure")
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	tokenString, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetToken(ctx, user.ID, &tokenString); err != nil {
		return nil, transient("store session", err)
	}

	s.metrics.CountAuth("success")
	return &models.Session{UserID: user.ID, Token: tokenString}, nil
}

func (s *AuthService) issueToken(userID uint) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Logout ends the session that token belongs to.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	cleared, err := s.userRepo.ClearToken(ctx, token)
	if err != nil {
		return transient("logout", err)
	}
	if !cleared {
		return fmt.Errorf("%w: session not found", ErrUnauthorized)
	}
	return nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.WithError(err).Debug("token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ResolveToken returns the id of the user holding the session token. The
// token must verify and must still be the user's current session.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims, err := s.ValidateToken(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claimed, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: token has no user", ErrUnauthorized)
	}

	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("%w: session ended", ErrUnauthorized)
		}
		return 0, transient("resolve token", err)
	}
	if uint(claimed) != user.ID {
		return 0, fmt.Errorf("%w: token does not match session", ErrUnauthorized)
	}
	return user.ID, nil
}

// View returns a user's public profile. The email is included only when
// token belongs to that same user.
func (s *AuthService) View(ctx context.Context, userID uint, token string) (*models.UserView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, transient("get user", err)
	}

	view := &models.UserView{FirstName: user.FirstName, LastName: user.LastName}
	if token != "" {
		if viewer, err := s.ResolveToken(ctx, token); err == nil && viewer == userID {
			view.Email = user.Email
		}
	}
	return view, nil
}

// Update changes the account of requesterID, who may only edit themself.
func (s *AuthService) Update(ctx context.Context, userID, requesterID uint, in UpdateUserInput) error {
	if userID != requesterID {
		return fmt.Errorf("%w: cannot edit another user", ErrForbidden)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return transient("get user", err)
	}

	changes := map[string]interface{}{}
	if in.FirstName != nil {
		changes["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		changes["last_name"] = *in.LastName
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
				return fmt.Errorf("%w: email already in use", ErrForbidden)
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return transient("check email", err)
			}
			changes["email"] = email
		}
	}
	if in.Password != nil {
		if in.CurrentPassword == nil {
			return fmt.Errorf("%w: current password is required", ErrInvalidInput)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*in.CurrentPassword)); err != nil {
			return fmt.Errorf("%w: incorrect current password", ErrUnauthorized)
		}
		if *in.Password == *in.CurrentPassword {
			return fmt.Errorf("%w: new password must differ from the current one", ErrForbidden)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		changes["password"] = string(hashed)
	}

	if err := s.userRepo.Update(ctx, userID, changes); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: email already in use", ErrForbidden)
		}
		return transient("update user", err)
	}
	return nil
}

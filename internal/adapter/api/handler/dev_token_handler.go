package handler

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"pasariklan/internal/domain/repository"
	"pasariklan/internal/infrastructure/firebase"
	"pasariklan/pkg/errors"
	"pasariklan/pkg/response"
)

type DevTokenHandler struct {
	firebaseAuth *firebase.FirebaseAuthClient
	userRepo     repository.UserRepository
	jwtSecret    string
	jwtExpiry    time.Duration
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) *DevTokenHandler {
	return &DevTokenHandler{
		firebaseAuth: firebaseAuth,
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
	}
}

func SetupDevTokenHandler(firebaseAuth *firebase.FirebaseAuthClient, userRepo repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) {
	devTokenHandler = NewDevTokenHandler(firebaseAuth, userRepo, jwtSecret, jwtExpiry)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

// GetLongLivedToken mints a Firebase ID token for the given user so that
// manual API testing does not need the mobile sign-in flow.
func (h *DevTokenHandler) GetLongLivedToken(c echo.Context) error {
	var req struct {
		UserID string `json:"user_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request payload", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), req.UserID)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.firebaseAuth.GenerateLongLivedToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// GetLocalToken signs a short HS256 token locally. Useful when working
// offline against the emulator, where the Identity Toolkit exchange is
// unavailable.
func (h *DevTokenHandler) GetLocalToken(c echo.Context) error {
	var req struct {
		UserID string `json:"user_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request payload", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   req.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.jwtExpiry)),
		Issuer:    "pasariklan-dev",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return response.Error(c, errors.Internal("Failed to sign token", err))
	}

	return response.Success(c, map[string]interface{}{
		"token":      signed,
		"expires_at": claims.ExpiresAt.Time.Format(time.RFC3339),
	})
}

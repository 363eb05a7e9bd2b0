package handler

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"
)

// AuthHandler implements the login flow with a simulated two-factor
// step: credentials are checked first, then a short-lived 6-digit code
// must be verified before a JWT is issued. The code is only logged, it
// is never sent anywhere; a real deployment would hand it to a mail or
// SMS provider at that point.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Register creates a user and immediately starts the two-factor flow
// instead of auto-logging the account in.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return err
	}

	// Check if user already exists - track DB query
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := h.db.Where("email = ?", req.Email).First(&existingUser)
	if result.Error == nil {
		log.Warn("User already exists", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if err := h.issueCode(c, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue verification code"})
	}

	log.Info("User registered, verification pending", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":             "Account created, verification code sent",
		"two_factor_required": true,
	})
}

// Login checks credentials and, on success, issues a verification code
// instead of a token. The token comes from Verify.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return err
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := h.db.Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.issueCode(c, user.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue verification code"})
	}

	log.Info("Credentials accepted, verification pending", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"message":             "Verification code sent",
		"two_factor_required": true,
	})
}

// Verify completes the two-factor flow: a matching, unexpired code
// deletes the pending entry and yields the JWT.
func (h *AuthHandler) Verify(c echo.Context) error {
	log := logger.FromEcho(c)

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse verification request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var pending model.VerificationCode
	result := h.db.Where("email = ?", req.Email).First(&pending)
	if result.Error != nil || pending.Code != req.Code {
		log.Warn("Invalid verification code", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_code")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid verification code"})
	}
	if time.Now().After(pending.ExpiresAt) {
		log.Warn("Expired verification code", zap.String("email", req.Email))
		prometheus.RecordAuthError("expired_code")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "verification code expired"})
	}

	var user model.User
	if result := h.db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Error("User vanished between login and verification", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid verification code"})
	}

	// Single-use: the code row goes away on success.
	h.db.Delete(&pending)

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()
	prometheus.ActiveSessionsGauge.Inc()
	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Resend regenerates the verification code for a pending login.
func (h *AuthHandler) Resend(c echo.Context) error {
	log := logger.FromEcho(c)

	var req resendRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse resend request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return err
	}

	var user model.User
	if result := h.db.Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Warn("Resend requested for unknown email", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		// Same response as success so the endpoint can't be used to
		// probe which emails are registered.
		return c.JSON(http.StatusOK, echo.Map{"message": "Verification code sent"})
	}

	if err := h.issueCode(c, user.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue verification code"})
	}

	log.Info("Verification code resent", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{"message": "Verification code sent"})
}

// issueCode generates a fresh 6-digit code and upserts it keyed on
// email, replacing any earlier pending code.
func (h *AuthHandler) issueCode(c echo.Context, email string) error {
	log := logger.FromEcho(c)

	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		log.Error("Failed to generate verification code", zap.Error(err))
		return err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	entry := model.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(h.cfg.Auth.CodeTTL),
	}

	defer prometheus.TrackDBOperation("upsert")(time.Now())
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(&entry).Error
	if err != nil {
		log.Error("Failed to store verification code", zap.Error(err))
		return err
	}

	// Demo stand-in for the email/SMS delivery step.
	log.Info("Verification code issued",
		zap.String("email", email),
		zap.String("code", code),
		zap.Time("expires_at", entry.ExpiresAt))
	return nil
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/internal/application"
	"github.com/oksasatya/movie-review-api/internal/domain/entity"
	"github.com/oksasatya/movie-review-api/internal/interface/middleware"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
	"github.com/oksasatya/movie-review-api/pkg/response"
	"github.com/oksasatya/movie-review-api/pkg/validation"
)

type AuthService interface {
	Register(ctx context.Context, in application.RegisterInput) (*application.AuthResult, error)
	Login(ctx context.Context, email, password string) (*application.AuthResult, error)
	FederatedLogin(ctx context.Context, credential string) (*application.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*entity.User, error)
}

type AuthHandler struct {
	Svc    AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type googleUserResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

type googleAuthResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token"`
	User    googleUserResponse `json:"user"`
}

type profileResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture"`
	IsGoogleSignIn bool      `json:"isGoogleSignIn"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	const missing = "Please provide email, username, and password"
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, http.StatusBadRequest, missing, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	switch {
	case err == nil:
	case errors.Is(err, application.ErrMissingField):
		response.Message(c, http.StatusBadRequest, missing)
		return
	case errors.Is(err, application.ErrDuplicateUser):
		response.Message(c, http.StatusBadRequest, "User already exists")
		return
	default:
		h.log(c).WithError(err).Error("registration failed")
		response.Message(c, http.StatusInternalServerError, "Server error during registration")
		return
	}

	h.log(c).WithField("user_id", res.User.ID).Info("user registered")
	c.JSON(http.StatusCreated, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	const missing = "Please provide email and password"
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Invalid(c, http.StatusBadRequest, missing, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, application.ErrMissingField):
		response.Message(c, http.StatusBadRequest, missing)
		return
	case errors.Is(err, application.ErrInvalidCredentials):
		h.log(c).WithField("email", helpers.MaskEmail(req.Email)).Info("login rejected")
		response.Message(c, http.StatusBadRequest, "Invalid credentials")
		return
	default:
		h.log(c).WithError(err).Error("login failed")
		response.Message(c, http.StatusInternalServerError, "Server error during login")
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// Google POST /auth/google
func (h *AuthHandler) Google(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, http.StatusBadRequest, "Missing Google credential", "")
		return
	}

	res, err := h.Svc.FederatedLogin(c.Request.Context(), req.Credential)
	var assertionErr *application.AssertionError
	switch {
	case err == nil:
	case errors.Is(err, application.ErrMissingCredential):
		response.Failure(c, http.StatusBadRequest, "Missing Google credential", "")
		return
	case errors.As(err, &assertionErr):
		h.log(c).WithError(assertionErr.Reason).Warn("google token verification failed")
		response.Failure(c, http.StatusUnauthorized, "Invalid Google token", assertionErr.Reason.Error())
		return
	case errors.Is(err, application.ErrEmailNotVerified):
		response.Failure(c, http.StatusBadRequest, "Email not verified by Google", "")
		return
	default:
		h.log(c).WithError(err).Error("google authentication failed")
		response.Failure(c, http.StatusInternalServerError, "Server error during authentication", "internal server error")
		return
	}

	c.JSON(http.StatusOK, googleAuthResponse{
		Success: true,
		Token:   res.Token,
		User: googleUserResponse{
			ID:             res.User.ID,
			Email:          res.User.Email,
			Username:       res.User.Username,
			ProfilePicture: res.User.ProfilePicture,
		},
	})
}

// Me GET /auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.CurrentUser(c.Request.Context(), middleware.UserID(c))
	switch {
	case err == nil:
	case errors.Is(err, application.ErrUnauthenticated):
		response.Message(c, http.StatusUnauthorized, "Token is not valid")
		return
	default:
		h.log(c).WithError(err).Error("get current user failed")
		response.Message(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		IsGoogleSignIn: u.IsGoogleSignIn,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	})
}

func (h *AuthHandler) log(c *gin.Context) *logrus.Entry {
	return h.Logger.WithField("request_id", response.RequestID(c))
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/hugh/flowboard/internal/api/dto"
	"github.com/hugh/flowboard/internal/auth"
	"github.com/hugh/flowboard/internal/database/models"
	"github.com/hugh/flowboard/internal/tasks"
)

type AuthHandler struct {
	authService *auth.Service
	asynqClient *asynq.Client
	baseURL     string
	logger      *slog.Logger
}

func NewAuthHandler(authService *auth.Service, asynqClient *asynq.Client, baseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		asynqClient: asynqClient,
		baseURL:     baseURL,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, token, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"username": "Username already exists"},
			})
		case errors.Is(err, auth.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Validation failed",
				Details: map[string]string{"email": "Email already registered"},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	// Delivery failure must not fail registration; the user can ask for a
	// resend later.
	message := "Registration successful! Please check your email to verify your account."
	if err := h.enqueueVerificationEmail(user, token); err != nil {
		h.logger.Warn("could not enqueue verification email", "user_id", user.ID, "error", err)
		message = "Registration successful, but we could not send the verification email. Please use the resend option."
	}

	writeJSON(w, http.StatusCreated, dto.SuccessResponse{Message: message})
}

func (h *AuthHandler) enqueueVerificationEmail(user *models.User, token string) error {
	if h.asynqClient == nil {
		return errors.New("task queue unavailable")
	}

	task, err := tasks.NewVerificationEmailTask(tasks.VerificationEmailPayload{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		VerifyURL: fmt.Sprintf("%s/api/v1/auth/verify/%s", h.baseURL, token),
	})
	if err != nil {
		return err
	}

	_, err = h.asynqClient.Enqueue(task)
	return err
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	err := h.authService.VerifyEmail(r.Context(), token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Your email has been verified! You can now log in."})
	case errors.Is(err, auth.ErrAlreadyVerified):
		writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Account already verified. Please log in."})
	case errors.Is(err, auth.ErrInvalidVerification), errors.Is(err, auth.ErrUserNotFound):
		// One generic message for expired, malformed and unknown tokens.
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "The verification link is invalid or has expired."})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Verification failed"})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid username or password."})
		case errors.Is(err, auth.ErrUnverifiedUser):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Please verify your email address before logging in."})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User: dto.UserDTO{
			ID:         resp.User.ID.String(),
			Username:   resp.User.Username,
			Email:      resp.User.Email,
			IsVerified: resp.User.IsVerified,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	forgetBoard(w)

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "You have been logged out."})
}

// ResendVerification always answers success-shaped so registered addresses
// cannot be probed.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	const message = "If that email is registered and unverified, a verification email has been sent."

	user, token, err := h.authService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) && !errors.Is(err, auth.ErrAlreadyVerified) {
			h.logger.Error("resend verification failed", "error", err)
		}
		writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: message})
		return
	}

	if err := h.enqueueVerificationEmail(user, token); err != nil {
		h.logger.Warn("could not enqueue verification email", "user_id", user.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: message})
}

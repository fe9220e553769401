// internal/handlers/auth/auth.go
package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/shiftsync/shiftsync_backend/config"
	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
	services "github.com/shiftsync/shiftsync_backend/internal/services/auth"
)

type AuthHandler struct {
	db         *sql.DB
	jwtService *services.JWTService
}

func NewAuthHandler(db *sql.DB, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		db:         db,
		jwtService: jwtService,
	}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var regData models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&regData); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	if len(regData.Username) < 3 {
		response.RespondWithError(w, http.StatusBadRequest, "Username must be at least 3 characters")
		return
	}
	if len(regData.Password) < 6 {
		response.RespondWithError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if regData.Role != "manager" && regData.Role != "employee" {
		response.RespondWithError(w, http.StatusBadRequest, "Role must be manager or employee")
		return
	}

	var count int
	err := h.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = $1", regData.Username).Scan(&count)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		response.RespondWithError(w, http.StatusConflict, "Username already taken")
		return
	}

	passwordHash, err := services.HashPassword(regData.Password)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)`,
		regData.Username,
		passwordHash,
		regData.Role,
	)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var loginData models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginData); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	var user models.User
	err := h.db.QueryRow(
		"SELECT id, username, password_hash, role FROM users WHERE username = $1",
		loginData.Username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role)
	if err != nil || !services.CheckPassword(user.PasswordHash, loginData.Password) {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(user.Username, user.Role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Could not generate token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
		Username:    user.Username,
	})
}

// GetProfile returns the authenticated user's record.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value(config.UsernameKey).(string)
	if username == "" {
		response.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var user models.User
	err := h.db.QueryRow(
		"SELECT id, username, role, created_at::text FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt)
	if err != nil {
		response.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, user)
}

package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type contextKey string

const AdminIDKey contextKey = "adminID"

type AuthHandler struct {
	service ports.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service ports.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary      Logs the admin in
// @Description  Checks the admin credentials and returns a bearer token for the admin routes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      loginRequest  true  "Admin credentials"
// @Success      200          {object}  domain.AccessToken
// @Failure      400,401
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

type updateAdminRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateAdmin godoc
// @Summary      Changes the admin password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        passwords  body  updateAdminRequest  true  "Current and new password"
// @Success      200
// @Failure      400,401
// @Security     BearerAuth
// @Router       /update-admin [put]
func (h *AuthHandler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
		return
	}

	var req updateAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), adminID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	adminID, ok := adminIDFrom(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
		return
	}

	admin, err := h.service.GetAdmin(r.Context(), adminID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, admin)
}

// RequireAdmin rejects requests without a valid bearer token and stores the
// admin id in the request context.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		adminID, err := h.service.Authenticate(strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(AdminIDKey).(int64)
	return id, ok
}

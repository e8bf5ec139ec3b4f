package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
)

const sessionCookie = "session_token"

type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
}

type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	user, err := h.svc.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "sign up")
		return
	}

	writeData(w, http.StatusCreated, user)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if ok := decodeJSON(w, r, &creds); !ok {
		return
	}

	session, err := h.svc.SignIn(r.Context(), creds)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeData(w, http.StatusOK, session)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	if err := h.svc.SignOut(r.Context(), token); err != nil {
		writeServiceError(w, r, h.logger, err, "sign out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})

	writeData(w, http.StatusOK, nil)
}

// RequireAuth resolves the session token and stores the user id in the request
// context. Requests without a valid session get a 401 envelope.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		userID, err := h.svc.Authenticate(r.Context(), token)
		if err != nil {
			writeServiceError(w, r, h.logger, err, "authenticate")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}

	return ""
}

// currentUser is only valid behind RequireAuth.
func currentUser(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

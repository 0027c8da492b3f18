package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/akapochi/event-management/internal/application"
)

const (
	stateCookieName     = "oauth_state"
	loginFromCookieName = "login_from"
	stateCookieTTL      = 10 * time.Minute
)

type identityService interface {
	UpsertUser(ctx context.Context, profile application.UserProfile) (application.User, error)
}

type sessionService interface {
	IssueSession(ctx context.Context, userID string) (application.Session, error)
	RevokeSession(ctx context.Context, token string) error
}

// AuthHandler drives the federated login flow: it redirects to the identity
// provider, completes the code exchange on callback, upserts the returned
// profile, and issues the session cookie.
type AuthHandler struct {
	users          identityService
	sessions       sessionService
	providers      map[string]OAuthProvider
	stateGenerator func() string
	responder      responder
	logger         *slog.Logger
}

// NewAuthHandler constructs an AuthHandler over the given providers.
func NewAuthHandler(users identityService, sessions sessionService, providers []OAuthProvider, stateGenerator func() string, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	byName := make(map[string]OAuthProvider, len(providers))
	for _, provider := range providers {
		if provider.Name != "" {
			byName[provider.Name] = provider
		}
	}
	if stateGenerator == nil {
		stateGenerator = func() string { return "" }
	}
	return &AuthHandler{
		users:          users,
		sessions:       sessions,
		providers:      byName,
		stateGenerator: stateGenerator,
		responder:      newResponder(base),
		logger:         base,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login starts the authorization-code flow for the named provider. The
// anti-forgery state lands in a short-lived cookie, and an optional loginFrom
// query parameter is remembered so the callback can send the user back.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, providerName string) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	provider, ok := h.providers[providerName]
	if !ok || provider.Config == nil {
		http.NotFound(w, r)
		return
	}

	state := h.stateGenerator()
	if state == "" {
		h.log(r.Context(), "Login", "provider", providerName).ErrorContext(r.Context(), "state generator returned empty state")
		h.responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "ログインを開始できませんでした。"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if from := sanitizeLoginFrom(r.URL.Query().Get("loginFrom")); from != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     loginFromCookieName,
			Value:    from,
			Path:     "/",
			MaxAge:   int(stateCookieTTL / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	h.log(r.Context(), "Login", "provider", providerName).InfoContext(r.Context(), "redirecting to identity provider")
	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the login: it checks the anti-forgery state, exchanges
// the authorization code, fetches the provider profile, upserts the user, and
// sets the session cookie before redirecting back into the application.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request, providerName string) {
	if h == nil || h.users == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	provider, ok := h.providers[providerName]
	if !ok || provider.Config == nil {
		http.NotFound(w, r)
		return
	}

	logger := h.log(r.Context(), "Callback", "provider", providerName)

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		logger.ErrorContext(r.Context(), "state mismatch on oauth callback")
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "ログイン状態を確認できませんでした。最初からやり直してください。"})
		return
	}
	clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		logger.ErrorContext(r.Context(), "missing authorization code on oauth callback")
		h.responder.writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Message: "認可コードがありません。"})
		return
	}

	token, err := provider.Config.Exchange(r.Context(), code)
	if err != nil {
		logger.ErrorContext(r.Context(), "authorization code exchange failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusBadGateway, errorResponse{Message: "認証プロバイダとの通信に失敗しました。"})
		return
	}

	profile, err := provider.FetchProfile(r.Context(), provider.Config.Client(r.Context(), token))
	if err != nil {
		logger.ErrorContext(r.Context(), "profile fetch failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusBadGateway, errorResponse{Message: "プロフィールの取得に失敗しました。"})
		return
	}

	user, err := h.users.UpsertUser(r.Context(), profile)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to upsert user profile",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	session, err := h.sessions.IssueSession(r.Context(), user.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to issue session",
			"error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt)

	redirectTo := "/"
	if cookie, err := r.Cookie(loginFromCookieName); err == nil {
		if from := sanitizeLoginFrom(cookie.Value); from != "" {
			redirectTo = from
		}
		clearCookie(w, loginFromCookieName)
	}

	logger.With("user_id", user.UserID).InfoContext(r.Context(), "user logged in")
	http.Redirect(w, r, redirectTo, http.StatusFound)
}

// Logout revokes the current session and clears the cookie. Logging out
// without a valid session is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if token := extractTokenFromRequest(r); token != "" {
		if err := h.sessions.RevokeSession(r.Context(), token); err != nil {
			h.log(r.Context(), "Logout").ErrorContext(r.Context(), "failed to revoke session",
				"error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// sanitizeLoginFrom keeps post-login redirects inside the application. Only
// site-relative paths survive; anything that could leave the origin (absolute
// URLs, protocol-relative "//host" forms) is dropped.
func sanitizeLoginFrom(raw string) string {
	from := strings.TrimSpace(raw)
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return ""
	}
	return from
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	clearCookie(w, SessionCookieName)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}

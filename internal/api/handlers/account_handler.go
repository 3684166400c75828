package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
)

// AccountHandler handles account and session HTTP requests
type AccountHandler struct {
	resolver services.IdentityResolver
	security *logger.SecurityLogger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(resolver services.IdentityResolver, security *logger.SecurityLogger) *AccountHandler {
	return &AccountHandler{
		resolver: resolver,
		security: security,
	}
}

// SessionRequest carries an optional client-held account ID
type SessionRequest struct {
	AccountID string `json:"account_id"`
}

// AccountResponse is returned by the session and account endpoints
type AccountResponse struct {
	AccountID string `json:"account_id"`
	Created   bool   `json:"created"`
}

// Session handles POST /api/session.
// The candidate comes from the body, then the X-Account-ID header, then the cookie.
func (h *AccountHandler) Session(c echo.Context) error {
	var req SessionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	candidate := strings.TrimSpace(req.AccountID)
	if candidate == "" {
		candidate = middleware.PresentedAccountID(c)
	}

	res, err := h.resolver.ResolveOrCreateAccount(c.Request().Context(), candidate)
	if err != nil {
		return response.Error(c, err)
	}

	if res.Created && services.IsAssigned(strings.TrimSpace(candidate)) && h.security != nil {
		h.security.AccountReissued(c.RealIP(), candidate, res.AccountID)
	}
	middleware.SetAccountCookie(c, res.AccountID)

	return response.Success(c, AccountResponse{
		AccountID: res.AccountID,
		Created:   res.Created,
	})
}

// Create handles POST /api/accounts
func (h *AccountHandler) Create(c echo.Context) error {
	id, err := h.resolver.CreateAccount(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	middleware.SetAccountCookie(c, id)
	return response.Created(c, AccountResponse{
		AccountID: id,
		Created:   true,
	})
}

// DeleteMe handles DELETE /api/accounts/me
func (h *AccountHandler) DeleteMe(c echo.Context) error {
	accountID := middleware.AccountID(c)

	if err := h.resolver.DeleteAccount(c.Request().Context(), accountID); err != nil {
		if apperrors.IsNotFound(err) {
			return response.NotFound(c, "account not found")
		}
		return response.Error(c, err)
	}

	middleware.ClearAccountCookie(c)
	return response.NoContent(c)
}

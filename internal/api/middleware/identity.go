package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/response"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/logger"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
)

// Identity transport
const (
	AccountHeader    = "X-Account-ID"
	AccountCookie    = "voicemail_account"
	accountCookieTTL = 365 * 24 * time.Hour
	accountKey       = "account_id"
)

// AccountIdentity resolves the caller's account from the X-Account-ID header
// or the account cookie, issuing a new account when neither names one.
// A newly issued ID is returned in both the cookie and the response header.
func AccountIdentity(resolver services.IdentityResolver, security *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := PresentedAccountID(c)

			res, err := resolver.ResolveOrCreateAccount(c.Request().Context(), presented)
			if err != nil {
				return response.Error(c, err)
			}

			if res.Created && services.IsAssigned(strings.TrimSpace(presented)) && security != nil {
				security.AccountReissued(c.RealIP(), presented, res.AccountID)
			}
			// New accounts and non-canonical spellings get the canonical id back
			if res.AccountID != presented {
				SetAccountCookie(c, res.AccountID)
			}

			SetAccountID(c, res.AccountID)
			return next(c)
		}
	}
}

// PresentedAccountID returns the identifier the client sent, header first
func PresentedAccountID(c echo.Context) string {
	if id := c.Request().Header.Get(AccountHeader); id != "" {
		return id
	}
	if cookie, err := c.Cookie(AccountCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// SetAccountCookie hands the account ID back to the client
func SetAccountCookie(c echo.Context, accountID string) {
	c.SetCookie(&http.Cookie{
		Name:     AccountCookie,
		Value:    accountID,
		Path:     "/",
		Expires:  time.Now().Add(accountCookieTTL),
		MaxAge:   int(accountCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set(AccountHeader, accountID)
}

// ClearAccountCookie expires the account cookie
func ClearAccountCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AccountCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// SetAccountID binds the request to an account
func SetAccountID(c echo.Context, accountID string) {
	c.Set(accountKey, accountID)
}

// AccountID returns the account resolved by AccountIdentity
func AccountID(c echo.Context) string {
	id, _ := c.Get(accountKey).(string)
	return id
}

// Package handlers exposes the services as JSON endpoints. Handlers expect
// the acting user to be attached by policy.AuthGate.Authenticate.
package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Emma781227/Ble-dor/httpx"
	"github.com/Emma781227/Ble-dor/i18n"
	"github.com/Emma781227/Ble-dor/internal/services"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	{services.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{services.ErrMissingCustomerName, http.StatusBadRequest, "missing_customer_name"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{services.ErrInvalidResetToken, http.StatusBadRequest, "invalid_reset_token"},
	{services.ErrEmailTaken, http.StatusBadRequest, "email_taken"},
	{services.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{services.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{services.ErrTicketGenerationFailed, http.StatusInternalServerError, "ticket_generation_failed"},
}

func lang(r *http.Request) string {
	return i18n.DetectLanguage(r.Header.Get("Accept-Language"))
}

// writeError renders err with its status and stable code. Unknown errors are
// logged and answered as storage_error.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	l := lang(r)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", i18n.T(l, "validation_failed"),
			i18n.TranslateAll(l, verr.Violations))
		return
	}
	// unknown products named in a request body are a client mistake
	var pnf *services.ProductNotFoundError
	if errors.As(err, &pnf) {
		httpx.JSONError(w, http.StatusBadRequest, "product_not_found", i18n.T(l, "product_not_found"),
			map[string]any{"product_ids": pnf.IDs})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= http.StatusInternalServerError {
				log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			}
			httpx.JSONError(w, m.status, m.code, i18n.T(l, m.code), nil)
			return
		}
	}

	log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	httpx.JSONError(w, http.StatusInternalServerError, "storage_error", i18n.T(l, "storage_error"), nil)
}

// badBody answers a malformed JSON payload.
func badBody(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, http.StatusBadRequest, "invalid_body", i18n.T(lang(r), "invalid_body"), nil)
}

// invalidFields answers field-level problems found while parsing the request.
func invalidFields(w http.ResponseWriter, r *http.Request, v map[string]string) {
	l := lang(r)
	httpx.JSONError(w, http.StatusBadRequest, "validation_failed", i18n.T(l, "validation_failed"), i18n.TranslateAll(l, v))
}

package notes

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-notes/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// ProtectedRoute builds the access gate for API routes. Handlers behind it
// only ever run in the authorized state.
func ProtectedRoute(cfg Config, validator TokenValidator, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler:    errorHandler,
		TokenValidator:  gateValidator{validator: validator},
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextEnricher: ContextEnricherAdapter,
	})
}

// MakeAPIAuthErrorHandler answers every gate rejection with the same 401
// payload. The sub-cause is logged server side and never surfaced.
func MakeAPIAuthErrorHandler(logger Logger) router.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(c router.Context, err error) error {
		logger.Info("request rejected at access gate", "error", err)
		return c.JSON(router.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}
}

// APIErrorHandler translates rich errors raised at the handler boundary
// into HTTP responses. Internal failures are logged and answered with a
// generic 500; nothing below the boundary writes to the transport.
func APIErrorHandler(logger Logger) router.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(c router.Context, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
				WithCode(errors.CodeInternal)
		}

		status := richErr.Code
		if status == 0 {
			status = statusFromCategory(richErr.Category)
		}

		switch richErr.Category {
		case errors.CategoryInternal, errors.CategoryOperation:
			logger.Error("request failed", "error", err)
			return c.JSON(status, map[string]string{
				"error": "internal server error",
			})
		}

		body := map[string]any{
			"error": richErr.Message,
		}
		if richErr.TextCode != "" {
			body["code"] = richErr.TextCode
		}
		if richErr.Category == errors.CategoryValidation && len(richErr.Metadata) > 0 {
			body["fields"] = richErr.Metadata
		}

		return c.JSON(status, body)
	}
}

func statusFromCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return router.StatusUnauthorized
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	case errors.CategoryConflict:
		return router.StatusConflict
	case errors.CategoryNotFound:
		return router.StatusNotFound
	default:
		return router.StatusInternalServerError
	}
}

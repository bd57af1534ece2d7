package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"StockAdvisor/internal/model"
)

// Runner runs one analysis from free-text symbols.
type Runner interface {
	RunInput(ctx context.Context, input string, budget float64) (*model.AnalysisResult, error)
}

// AnalysisRequest is accepted as query parameters (GET) or a JSON body (POST).
// A missing budget falls back to the configured default.
type AnalysisRequest struct {
	Symbols string   `json:"symbols" query:"symbols" validate:"required"`
	Budget  *float64 `json:"budget" query:"budget" validate:"omitempty,gt=0"`
}

type apiResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  []validationError `json:"errors,omitempty"`
}

type validationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

var validate = validator.New()

// Handler serves the analysis endpoints.
type Handler struct {
	Runner        Runner
	DefaultBudget float64
}

// NewHandler creates a new Handler.
func NewHandler(r Runner, defaultBudget float64) *Handler {
	return &Handler{Runner: r, DefaultBudget: defaultBudget}
}

// RegisterRoutes mounts the analysis routes under /api/v1.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/analysis", h.Analyze)
	g.POST("/analysis", h.Analyze)
}

// Analyze runs the pipeline and writes the result. A bulk fetch failure yields 502 with the
// partial result (information table only).
func (h *Handler) Analyze(c echo.Context) error {
	var req AnalysisRequest
	if errs := readAndValidate(c, &req); errs != nil {
		return respond(c, http.StatusBadRequest, nil, errs)
	}

	budget := h.DefaultBudget
	if req.Budget != nil {
		budget = *req.Budget
	}

	res, err := h.Runner.RunInput(c.Request().Context(), req.Symbols, budget)
	var ffe *model.FetchFailureError
	switch {
	case err == nil:
		return respond(c, http.StatusOK, res, nil)
	case errors.Is(err, model.ErrNoSymbols):
		return respond(c, http.StatusBadRequest, nil, []validationError{{Code: "ERR_NO_SYMBOLS", Field: "symbols", Message: err.Error()}})
	case errors.Is(err, model.ErrInvalidBudget):
		return respond(c, http.StatusBadRequest, nil, []validationError{{Code: "ERR_INVALID_BUDGET", Field: "budget", Message: err.Error()}})
	case errors.As(err, &ffe):
		return respond(c, http.StatusBadGateway, res, []validationError{{Code: "ERR_FETCH_FAILED", Message: err.Error()}})
	default:
		log.Error().Err(err).Msg("analysis failed")
		return respond(c, http.StatusInternalServerError, nil, nil)
	}
}

func respond(c echo.Context, status int, data any, errs []validationError) error {
	return c.JSON(status, apiResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
		Errors:  errs,
	})
}

// readAndValidate binds, applies defaults and validates req.
func readAndValidate(c echo.Context, req any) []validationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []validationError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]validationError, 0, len(ves))
		for _, fe := range ves {
			out = append(out, validationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   strings.ToLower(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		return out
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []validationError{{Code: "ERR_BIND", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []validationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

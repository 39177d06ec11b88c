package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storefront-cart/internal/domain"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type productPayload struct {
	Product domain.Product `json:"product"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// respondError maps service errors onto statuses. notFound is the message
// used for domain.ErrNotFound.
func (h *handlers) respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		abortWithMessage(c, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrMissingProduct):
		abortWithMessage(c, http.StatusBadRequest, "Product ID is required")
	case errors.Is(err, domain.ErrInvalidQuantity):
		abortWithMessage(c, http.StatusBadRequest, "Invalid quantity")
	case errors.Is(err, domain.ErrInvalidFlavor):
		abortWithMessage(c, http.StatusBadRequest, "Selected flavor is not available")
	default:
		h.logger.Errorw("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDHeader),
			"error", err,
		)
		abortWithMessage(c, http.StatusInternalServerError, "Internal server error")
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report JSON field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

// bindingMessage renders validator errors as a short client message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

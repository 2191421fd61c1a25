package menu

import (
	"math"
	"net/url"
	"strings"

	"github.com/appetiteclub/roms/pkg/enums/category"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateMenuItem validates a create or update request
func ValidateMenuItem(req MenuItemRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) || req.Price < 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Message: "price must be a non-negative number",
		})
	}

	if category.ByName(req.Category) == nil {
		errors = append(errors, ValidationError{
			Field:   "category",
			Message: "category must be one of Appetizers, Main Course, Desserts, Beverages",
		})
	}

	if req.Image != "" {
		if u, err := url.Parse(req.Image); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "image",
				Message: "image must be an absolute URL",
			})
		}
	}

	return errors
}

func normalizeCategory(name string) string {
	if c := category.ByName(name); c != nil {
		return c.Name
	}
	return strings.TrimSpace(name)
}

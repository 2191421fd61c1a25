package order

import (
	"fmt"
	"math"
	"strings"

	"github.com/appetiteclub/roms/pkg/enums/itemstatus"
	"github.com/appetiteclub/roms/pkg/enums/orderstatus"
)

func ValidatePlaceOrder(req PlaceOrderRequest) []string {
	var errors []string

	if req.TableNumber <= 0 {
		errors = append(errors, "table_number must be a positive integer")
	}

	if len(req.Items) == 0 {
		errors = append(errors, "items are required")
	}

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			errors = append(errors, fmt.Sprintf("items[%d].quantity must be a positive integer", i))
		}

		if item.MenuItemID != nil {
			continue
		}

		if strings.TrimSpace(item.Name) == "" {
			errors = append(errors, fmt.Sprintf("items[%d].name is required", i))
		}

		switch {
		case item.Price == nil:
			errors = append(errors, fmt.Sprintf("items[%d].price is required", i))
		case math.IsNaN(*item.Price) || math.IsInf(*item.Price, 0):
			errors = append(errors, fmt.Sprintf("items[%d].price must be a finite number", i))
		case *item.Price < 0:
			errors = append(errors, fmt.Sprintf("items[%d].price cannot be negative", i))
		}
	}

	return errors
}

func ValidateStatusUpdate(req StatusUpdateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Status) == "" {
		errors = append(errors, "status is required")
	} else if !orderstatus.IsValid(req.Status) {
		errors = append(errors, "invalid status")
	}

	return errors
}

func ValidateItemStatusUpdate(req ItemStatusUpdateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Status) == "" {
		errors = append(errors, "status is required")
	} else if itemstatus.ByName(req.Status) == nil {
		errors = append(errors, "invalid item status")
	}

	return errors
}

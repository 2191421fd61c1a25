package tables

import (
	"github.com/appetiteclub/roms/pkg/enums/tablestatus"
)

func ValidateTableCreate(req TableCreateRequest) []string {
	var errors []string

	if req.Number <= 0 {
		errors = append(errors, "number must be a positive integer")
	}

	if req.Capacity < 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	if req.Status != "" && !tablestatus.IsValid(req.Status) {
		errors = append(errors, "invalid status")
	}

	return errors
}

func ValidateTableUpdate(req TableUpdateRequest) []string {
	var errors []string

	if req.Number == nil && req.Capacity == nil && req.Status == nil {
		errors = append(errors, "no fields to update")
	}

	if req.Number != nil && *req.Number <= 0 {
		errors = append(errors, "number must be a positive integer")
	}

	if req.Capacity != nil && *req.Capacity <= 0 {
		errors = append(errors, "capacity must be greater than 0")
	}

	if req.Status != nil && !tablestatus.IsValid(*req.Status) {
		errors = append(errors, "invalid status")
	}

	return errors
}

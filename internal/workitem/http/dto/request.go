package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/rfp-pipeline/internal/validation"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

// UpdateStatusRequest contains the parameters for an operator status override.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Validate checks if the update status request is valid.
func (r *UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ParseStatus converts the request status string to a domain status.
func (r *UpdateStatusRequest) ParseStatus() (workItemDomain.Status, error) {
	status := workItemDomain.Status(r.Status)
	if !status.IsValid() {
		return "", validation.NewError("validation_status", "unknown work item status")
	}
	return status, nil
}

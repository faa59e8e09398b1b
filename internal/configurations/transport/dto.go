package transport

import (
	"campaign_portal_backend/internal/configurations/domain"
	"campaign_portal_backend/platform/batch"
	"campaign_portal_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegisterValidators adds the config_key tag for categories and values.
func RegisterValidators(val *validator.Validator) error {
	return val.RegisterValidation("config_key", func(fl playground.FieldLevel) bool {
		return domain.IsKey(fl.Field().String())
	})
}

type ListRequest struct {
	Category string `form:"category" validate:"required,config_key"`
}

type CreateRequest struct {
	Category  string `json:"category" validate:"required,config_key"`
	Label     string `json:"label" validate:"required,min=1,max=100"`
	Value     string `json:"value" validate:"required,config_key"`
	SortOrder int    `json:"sortOrder" validate:"min=0"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type UpdateRequest struct {
	Label     *string `json:"label,omitempty" validate:"omitempty,min=1,max=100"`
	Value     *string `json:"value,omitempty" validate:"omitempty,config_key"`
	SortOrder *int    `json:"sortOrder,omitempty" validate:"omitempty,min=1"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// ReorderRequest lists a category's entries in their new order.
type ReorderRequest struct {
	Category string      `json:"category" validate:"required,config_key"`
	IDs      []uuid.UUID `json:"ids" validate:"required,min=1,max=200,dive,required"`
}

type ConfigurationResponse struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Label     string    `json:"label"`
	Value     string    `json:"value"`
	SortOrder int       `json:"sortOrder"`
	IsActive  bool      `json:"isActive"`
}

type ListResponse struct {
	Category string                  `json:"category"`
	Items    []ConfigurationResponse `json:"items"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type ReorderResponse struct {
	Category string        `json:"category"`
	Outcome  batch.Outcome `json:"outcome"`
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// respondError translates domain and storage errors into the service's error
// envelope. Validation errors are recoverable caller mistakes, not system
// faults.
func respondError(c *gin.Context, err error) {
	var missing *models.MissingRequiredAttributeError
	var invalidValue *models.InvalidAttributeValueError
	var invalidAttribute *models.InvalidAttributeIDError
	var invalidValueID *models.InvalidValueIDError

	switch {
	case errors.As(err, &missing):
		details := models.JSON{"attributes": missing.AttributeNames}
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "MISSING_REQUIRED_ATTRIBUTE",
				Message: missing.Error(),
				Details: &details,
			},
		})
	case errors.As(err, &invalidValue):
		details := models.JSON{"valueIds": invalidValue.ValueIDs}
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ATTRIBUTE_VALUE",
				Message: invalidValue.Error(),
				Details: &details,
			},
		})
	case errors.As(err, &invalidAttribute):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_ATTRIBUTE_ID",
				Message: invalidAttribute.Error(),
			},
		})
	case errors.As(err, &invalidValueID):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_VALUE_ID",
				Message: invalidValueID.Error(),
			},
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "resource not found",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		},
	})
}

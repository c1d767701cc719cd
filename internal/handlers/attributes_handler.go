package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
)

// AttributeStore is the repository surface the attributes handler needs.
type AttributeStore interface {
	CreateAttribute(ctx context.Context, attr *models.Attribute) error
	AttributeByID(ctx context.Context, id uint) (*models.Attribute, error)
	ListAttributes(ctx context.Context) ([]models.Attribute, error)
	AttributeNameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	UpdateAttribute(ctx context.Context, attr *models.Attribute) error
	DeleteAttribute(ctx context.Context, id uint) error
	CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error
	ValueByID(ctx context.Context, id uint) (*models.AttributeValue, error)
	UpdateAttributeValue(ctx context.Context, value *models.AttributeValue) error
	DeleteAttributeValue(ctx context.Context, id uint) error
	SubcategoryIDsForAttribute(ctx context.Context, attributeID uint) ([]uint, error)
	SubcategoryIDsForValue(ctx context.Context, valueID uint) ([]uint, error)
}

type AttributesHandler struct {
	store       AttributeStore
	invalidator LegalValueInvalidator
}

func NewAttributesHandler(store AttributeStore, invalidator LegalValueInvalidator) *AttributesHandler {
	return &AttributesHandler{store: store, invalidator: invalidator}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "invalid id",
				Field:   param,
			},
		})
		return 0, false
	}
	return uint(id), true
}

// ListAttributes returns all attributes with their values
// GET /api/v1/attributes
func (h *AttributesHandler) ListAttributes(c *gin.Context) {
	attrs, err := h.store.ListAttributes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: attrs})
}

// GetAttribute returns one attribute with its values
// GET /api/v1/attributes/:id
func (h *AttributesHandler) GetAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	attr, err := h.store.AttributeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: attr})
}

// CreateAttribute creates a new attribute
// POST /api/v1/attributes
func (h *AttributesHandler) CreateAttribute(c *gin.Context) {
	var req models.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	exists, err := h.store.AttributeNameExists(c.Request.Context(), req.Name, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DUPLICATE_NAME",
				Message: "attribute name already exists",
				Field:   "name",
			},
		})
		return
	}

	attr := models.Attribute{
		Name:               req.Name,
		IsVariantGenerator: req.IsVariantGenerator,
		DisplayOrder:       req.DisplayOrder,
		HelpText:           req.HelpText,
	}
	if err := h.store.CreateAttribute(c.Request.Context(), &attr); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: attr})
}

// UpdateAttribute updates an attribute
// PUT /api/v1/attributes/:id
func (h *AttributesHandler) UpdateAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	attr, err := h.store.AttributeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != nil && *req.Name != attr.Name {
		exists, err := h.store.AttributeNameExists(c.Request.Context(), *req.Name, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if exists {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "DUPLICATE_NAME",
					Message: "attribute name already exists",
					Field:   "name",
				},
			})
			return
		}
		attr.Name = *req.Name
	}
	if req.IsVariantGenerator != nil {
		attr.IsVariantGenerator = *req.IsVariantGenerator
	}
	if req.DisplayOrder != nil {
		attr.DisplayOrder = *req.DisplayOrder
	}
	if req.HelpText != nil {
		attr.HelpText = req.HelpText
	}

	if err := h.store.UpdateAttribute(c.Request.Context(), attr); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: attr})
}

// DeleteAttribute deletes an attribute; its values and all pivot rows
// referencing them are removed as well
// DELETE /api/v1/attributes/:id
func (h *AttributesHandler) DeleteAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.AttributeByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	// The delete empties the allow-list of every subcategory scoping this
	// attribute; collect those before the pivot rows are gone.
	subcategoryIDs, err := h.store.SubcategoryIDsForAttribute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteAttribute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	for _, subcategoryID := range subcategoryIDs {
		if err := h.invalidator.InvalidateLegalValues(c.Request.Context(), subcategoryID, id); err != nil {
			respondError(c, err)
			return
		}
	}
	message := "attribute deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// CreateValue creates a value under an attribute
// POST /api/v1/attributes/:id/values
func (h *AttributesHandler) CreateValue(c *gin.Context) {
	attributeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CreateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.store.AttributeByID(c.Request.Context(), attributeID); err != nil {
		respondError(c, err)
		return
	}

	value := models.AttributeValue{
		AttributeID:    attributeID,
		Name:           req.Name,
		Representation: req.Representation,
	}
	if err := h.store.CreateAttributeValue(c.Request.Context(), &value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.SuccessResponse{Success: true, Data: value})
}

// UpdateValue updates a value
// PUT /api/v1/attributes/:id/values/:valueId
func (h *AttributesHandler) UpdateValue(c *gin.Context) {
	valueID, ok := parseID(c, "valueId")
	if !ok {
		return
	}

	var req models.UpdateAttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	value, err := h.store.ValueByID(c.Request.Context(), valueID)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Name != nil {
		value.Name = *req.Name
	}
	if req.Representation != nil {
		value.Representation = req.Representation
	}
	if err := h.store.UpdateAttributeValue(c.Request.Context(), value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: value})
}

// DeleteValue deletes a value and every pivot row referencing it
// DELETE /api/v1/attributes/:id/values/:valueId
func (h *AttributesHandler) DeleteValue(c *gin.Context) {
	valueID, ok := parseID(c, "valueId")
	if !ok {
		return
	}
	value, err := h.store.ValueByID(c.Request.Context(), valueID)
	if err != nil {
		respondError(c, err)
		return
	}
	subcategoryIDs, err := h.store.SubcategoryIDsForValue(c.Request.Context(), valueID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteAttributeValue(c.Request.Context(), valueID); err != nil {
		respondError(c, err)
		return
	}
	for _, subcategoryID := range subcategoryIDs {
		if err := h.invalidator.InvalidateLegalValues(c.Request.Context(), subcategoryID, value.AttributeID); err != nil {
			respondError(c, err)
			return
		}
	}
	message := "attribute value deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

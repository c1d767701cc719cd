package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-service/internal/models"
)

// SubcategoryStore is the repository surface the subcategories handler needs.
type SubcategoryStore interface {
	SubcategoryByID(ctx context.Context, id uint) (*models.Subcategory, error)
	AttributeByID(ctx context.Context, id uint) (*models.Attribute, error)
	SubcategoryAttributes(ctx context.Context, subcategoryID uint) ([]models.SubcategoryAttribute, error)
	UpsertSubcategoryAttribute(ctx context.Context, row *models.SubcategoryAttribute) error
	DeleteSubcategoryAttribute(ctx context.Context, subcategoryID, attributeID uint) error
	ReplaceSubcategoryAttributeValues(ctx context.Context, subcategoryID, attributeID uint, valueIDs []uint) error
}

// LegalValueInvalidator drops the cached legal-value allow-list for one
// (subcategory, attribute) pair after a pivot write.
type LegalValueInvalidator interface {
	InvalidateLegalValues(ctx context.Context, subcategoryID, attributeID uint) error
}

type SubcategoriesHandler struct {
	store       SubcategoryStore
	invalidator LegalValueInvalidator
}

func NewSubcategoriesHandler(store SubcategoryStore, invalidator LegalValueInvalidator) *SubcategoriesHandler {
	return &SubcategoriesHandler{store: store, invalidator: invalidator}
}

// ListAttributes returns the subcategory's attributes with pivot data,
// ordered by display order
// GET /api/v1/subcategories/:id/attributes
func (h *SubcategoriesHandler) ListAttributes(c *gin.Context) {
	subcategoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.SubcategoryByID(c.Request.Context(), subcategoryID); err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.store.SubcategoryAttributes(c.Request.Context(), subcategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: rows})
}

// LinkAttribute links an attribute to the subcategory, updating pivot data
// when the link already exists
// PUT /api/v1/subcategories/:id/attributes/:attributeId
func (h *SubcategoriesHandler) LinkAttribute(c *gin.Context) {
	subcategoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attributeId")
	if !ok {
		return
	}

	var req models.LinkSubcategoryAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.store.SubcategoryByID(c.Request.Context(), subcategoryID); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.store.AttributeByID(c.Request.Context(), attributeID); err != nil {
		respondError(c, err)
		return
	}

	row := models.SubcategoryAttribute{
		SubcategoryID: subcategoryID,
		AttributeID:   attributeID,
		IsRequired:    req.IsRequired,
		DisplayOrder:  req.DisplayOrder,
	}
	if err := h.store.UpsertSubcategoryAttribute(c.Request.Context(), &row); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: row})
}

// UnlinkAttribute unlinks an attribute from the subcategory along with its
// scoped value allow-list
// DELETE /api/v1/subcategories/:id/attributes/:attributeId
func (h *SubcategoriesHandler) UnlinkAttribute(c *gin.Context) {
	subcategoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attributeId")
	if !ok {
		return
	}

	if err := h.store.DeleteSubcategoryAttribute(c.Request.Context(), subcategoryID, attributeID); err != nil {
		respondError(c, err)
		return
	}
	// The allow-list rows are gone; the cached copy must go with them.
	if err := h.invalidator.InvalidateLegalValues(c.Request.Context(), subcategoryID, attributeID); err != nil {
		respondError(c, err)
		return
	}
	message := "attribute unlinked"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// ReplaceLegalValues replaces the allow-list of values legal for one
// attribute in the subcategory
// PUT /api/v1/subcategories/:id/attributes/:attributeId/values
func (h *SubcategoriesHandler) ReplaceLegalValues(c *gin.Context) {
	subcategoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attributeId")
	if !ok {
		return
	}

	var req models.ReplaceLegalValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := h.store.SubcategoryByID(c.Request.Context(), subcategoryID); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.store.AttributeByID(c.Request.Context(), attributeID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.ReplaceSubcategoryAttributeValues(c.Request.Context(), subcategoryID, attributeID, req.ValueIDs); err != nil {
		respondError(c, err)
		return
	}
	if err := h.invalidator.InvalidateLegalValues(c.Request.Context(), subcategoryID, attributeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: req.ValueIDs})
}

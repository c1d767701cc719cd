package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
	"catalog-service/internal/services/attribute"
)

// ProductAttributeUpdater is the service surface for mutating a product's
// attribute assignment and regenerating its variants.
type ProductAttributeUpdater interface {
	HandleAttributeUpdate(ctx context.Context, productID uint, changes models.AttributeChangeSet) (*attribute.UpdateResult, error)
	RegenerateVariants(ctx context.Context, productID uint) ([]models.Variant, error)
	SyncProductAttributes(ctx context.Context, productID uint) error
}

// ProductStore is the repository surface the products handler reads from.
type ProductStore interface {
	ProductByID(ctx context.Context, productID uint) (*models.Product, error)
	ProductVariants(ctx context.Context, productID uint) ([]models.Variant, error)
}

type ProductsHandler struct {
	service ProductAttributeUpdater
	store   ProductStore
}

func NewProductsHandler(service ProductAttributeUpdater, store ProductStore) *ProductsHandler {
	return &ProductsHandler{service: service, store: store}
}

// UpdateAttributeValues applies an add/remove/replace change set to the
// product's attribute assignment
// PUT /api/v1/products/:id/attribute-values
func (h *ProductsHandler) UpdateAttributeValues(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductAttributeValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	changes := models.AttributeChangeSet{
		Add:     req.Add,
		Remove:  req.Remove,
		Replace: req.Replace,
	}
	if changes.Empty() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "change set must carry at least one of add, remove, replace",
			},
		})
		return
	}

	result, err := h.service.HandleAttributeUpdate(c.Request.Context(), productID, changes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AttributeUpdateResponse{
		Success:            true,
		RegenerationNeeded: result.RegenerationNeeded,
		Variants:           result.Variants,
	})
}

// SyncAttributes re-derives the product's attribute set from its subcategory
// POST /api/v1/products/:id/attributes/sync
func (h *ProductsHandler) SyncAttributes(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.SyncProductAttributes(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	message := "product attributes synced"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &message})
}

// GetVariants returns the product's variants with their value combinations
// GET /api/v1/products/:id/variants
func (h *ProductsHandler) GetVariants(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.ProductByID(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	variants, err := h.store.ProductVariants(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: variants})
}

// RegenerateVariants rebuilds the product's variants from its current
// attribute assignment
// POST /api/v1/products/:id/variants/regenerate
func (h *ProductsHandler) RegenerateVariants(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	variants, err := h.service.RegenerateVariants(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: variants})
}

// ExportVariants streams the product's variant matrix as an xlsx workbook
// GET /api/v1/products/:id/variants/export
func (h *ProductsHandler) ExportVariants(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.store.ProductByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	variants, err := h.store.ProductVariants(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Variants"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"SKU", "Name", "Price", "Quantity", "Attribute Values"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, v := range variants {
		combination := ""
		for i, val := range v.AttributeValues {
			if i > 0 {
				combination += " / "
			}
			combination += val.Name
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row+2), v.SKU)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row+2), v.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row+2), v.Price.String())
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row+2), v.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row+2), combination)
	}

	f.SetColWidth(sheetName, "A", "B", 25)
	f.SetColWidth(sheetName, "C", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 40)

	// Render to a buffer first so a failed serialization still gets the
	// regular error envelope instead of a truncated download.
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_variants.xlsx", product.SKU))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

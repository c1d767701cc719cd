package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-service/internal/models"
	"catalog-service/internal/services/attribute"
)

// CatalogRepository wraps the typed queries over the catalog tables and
// their pivots. It satisfies the attribute service's Store (and through it
// the variant engine's Store).
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) withDB(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// InTransaction runs fn against a transaction-scoped repository, rolling
// back on any error.
func (r *CatalogRepository) InTransaction(ctx context.Context, fn func(attribute.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.withDB(tx))
	})
}

// Attribute CRUD

func (r *CatalogRepository) CreateAttribute(ctx context.Context, attr *models.Attribute) error {
	return r.db.WithContext(ctx).Create(attr).Error
}

func (r *CatalogRepository) AttributeByID(ctx context.Context, id uint) (*models.Attribute, error) {
	var attr models.Attribute
	if err := r.db.WithContext(ctx).Preload("Values").First(&attr, id).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *CatalogRepository) ListAttributes(ctx context.Context) ([]models.Attribute, error) {
	var attrs []models.Attribute
	err := r.db.WithContext(ctx).Preload("Values").
		Order("display_order, id").
		Find(&attrs).Error
	return attrs, err
}

func (r *CatalogRepository) AttributeNameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Attribute{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CatalogRepository) UpdateAttribute(ctx context.Context, attr *models.Attribute) error {
	return r.db.WithContext(ctx).Save(attr).Error
}

// DeleteAttribute removes the attribute; values and pivot rows cascade.
func (r *CatalogRepository) DeleteAttribute(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		valueIDs := tx.Model(&models.AttributeValue{}).Select("id").Where("attribute_id = ?", id)
		if err := tx.Where("attribute_value_id IN (?)", valueIDs).Delete(&models.ProductAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_value_id IN (?)", valueIDs).Delete(&models.VariantAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.SubcategoryAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.SubcategoryAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.ProductAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&models.AttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Attribute{}, id).Error
	})
}

// Attribute value CRUD

func (r *CatalogRepository) CreateAttributeValue(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Create(value).Error
}

func (r *CatalogRepository) ValueByID(ctx context.Context, id uint) (*models.AttributeValue, error) {
	var value models.AttributeValue
	if err := r.db.WithContext(ctx).First(&value, id).Error; err != nil {
		return nil, err
	}
	return &value, nil
}

func (r *CatalogRepository) UpdateAttributeValue(ctx context.Context, value *models.AttributeValue) error {
	return r.db.WithContext(ctx).Save(value).Error
}

func (r *CatalogRepository) DeleteAttributeValue(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attribute_value_id = ?", id).Delete(&models.ProductAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_value_id = ?", id).Delete(&models.VariantAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_value_id = ?", id).Delete(&models.SubcategoryAttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.AttributeValue{}, id).Error
	})
}

func (r *CatalogRepository) ValuesByIDs(ctx context.Context, ids []uint) ([]models.AttributeValue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var values []models.AttributeValue
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&values).Error
	return values, err
}

// Subcategory scoping

func (r *CatalogRepository) SubcategoryByID(ctx context.Context, id uint) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubcategoryAttributes returns the subcategory's attribute pivot rows with
// their attributes loaded, ordered by pivot display order then attribute id.
func (r *CatalogRepository) SubcategoryAttributes(ctx context.Context, subcategoryID uint) ([]models.SubcategoryAttribute, error) {
	var rows []models.SubcategoryAttribute
	err := r.db.WithContext(ctx).Preload("Attribute").
		Where("subcategory_id = ?", subcategoryID).
		Order("display_order, attribute_id").
		Find(&rows).Error
	return rows, err
}

// UpsertSubcategoryAttribute links an attribute to a subcategory, updating
// the pivot data when the link already exists.
func (r *CatalogRepository) UpsertSubcategoryAttribute(ctx context.Context, row *models.SubcategoryAttribute) error {
	return r.db.WithContext(ctx).
		Omit("Attribute").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subcategory_id"}, {Name: "attribute_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_required", "display_order", "updated_at"}),
		}).
		Create(row).Error
}

// DeleteSubcategoryAttribute unlinks an attribute from a subcategory along
// with its scoped value allow-list.
func (r *CatalogRepository) DeleteSubcategoryAttribute(ctx context.Context, subcategoryID, attributeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subcategory_id = ? AND attribute_id = ?", subcategoryID, attributeID).
			Delete(&models.SubcategoryAttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Where("subcategory_id = ? AND attribute_id = ?", subcategoryID, attributeID).
			Delete(&models.SubcategoryAttribute{}).Error
	})
}

// ReplaceSubcategoryAttributeValues replaces the allow-list of values legal
// for one attribute in a subcategory. Callers must invalidate the
// legal-value cache for the pair afterwards.
func (r *CatalogRepository) ReplaceSubcategoryAttributeValues(ctx context.Context, subcategoryID, attributeID uint, valueIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subcategory_id = ? AND attribute_id = ?", subcategoryID, attributeID).
			Delete(&models.SubcategoryAttributeValue{}).Error; err != nil {
			return err
		}
		if len(valueIDs) == 0 {
			return nil
		}
		rows := make([]models.SubcategoryAttributeValue, len(valueIDs))
		for i, valueID := range valueIDs {
			rows[i] = models.SubcategoryAttributeValue{
				SubcategoryID:    subcategoryID,
				AttributeID:      attributeID,
				AttributeValueID: valueID,
			}
		}
		return tx.Create(&rows).Error
	})
}

// SubcategoryIDsForAttribute returns the distinct subcategories whose legal
// value allow-list references the attribute. Callers deleting the attribute
// use this to invalidate the cached allow-lists the delete empties.
func (r *CatalogRepository) SubcategoryIDsForAttribute(ctx context.Context, attributeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Distinct().
		Order("subcategory_id").
		Pluck("subcategory_id", &ids).Error
	return ids, err
}

// SubcategoryIDsForValue returns the distinct subcategories whose legal value
// allow-list contains the value.
func (r *CatalogRepository) SubcategoryIDsForValue(ctx context.Context, valueID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttributeValue{}).
		Where("attribute_value_id = ?", valueID).
		Distinct().
		Order("subcategory_id").
		Pluck("subcategory_id", &ids).Error
	return ids, err
}

// Validation reads

func (r *CatalogRepository) LegalValueIDs(ctx context.Context, subcategoryID, attributeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttributeValue{}).
		Where("subcategory_id = ? AND attribute_id = ?", subcategoryID, attributeID).
		Order("attribute_value_id").
		Pluck("attribute_value_id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) AllowedValueIDs(ctx context.Context, subcategoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttributeValue{}).
		Where("subcategory_id = ?", subcategoryID).
		Order("attribute_value_id").
		Pluck("attribute_value_id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) RequiredAttributes(ctx context.Context, subcategoryID uint) ([]models.SubcategoryAttribute, error) {
	var rows []models.SubcategoryAttribute
	err := r.db.WithContext(ctx).Preload("Attribute").
		Where("subcategory_id = ? AND is_required = ?", subcategoryID, true).
		Order("display_order, attribute_id").
		Find(&rows).Error
	return rows, err
}

// Product assignment

func (r *CatalogRepository) ProductByID(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockProduct loads the product under SELECT ... FOR UPDATE. Concurrent
// attribute updates on one product serialize here; without the lock the
// delete-all/recreate variant strategy can interleave deletes and inserts
// from two transactions.
func (r *CatalogRepository) LockProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *CatalogRepository) AttachProductValues(ctx context.Context, productID uint, valueIDs []uint) error {
	if len(valueIDs) == 0 {
		return nil
	}
	rows := make([]models.ProductAttributeValue, len(valueIDs))
	for i, valueID := range valueIDs {
		rows[i] = models.ProductAttributeValue{ProductID: productID, AttributeValueID: valueID}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *CatalogRepository) DetachProductValues(ctx context.Context, productID uint, valueIDs []uint) error {
	if len(valueIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND attribute_value_id IN ?", productID, valueIDs).
		Delete(&models.ProductAttributeValue{}).Error
}

func (r *CatalogRepository) ReplaceProductValues(ctx context.Context, productID uint, valueIDs []uint) error {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(valueIDs) > 0 {
		query = query.Where("attribute_value_id NOT IN ?", valueIDs)
	}
	if err := query.Delete(&models.ProductAttributeValue{}).Error; err != nil {
		return err
	}
	return r.AttachProductValues(ctx, productID, valueIDs)
}

func (r *CatalogRepository) AssignedValuePairs(ctx context.Context, productID uint) ([]models.AttributeValuePair, error) {
	var pairs []models.AttributeValuePair
	err := r.db.WithContext(ctx).Model(&models.AttributeValue{}).
		Select("attribute_values.attribute_id AS attribute_id, attribute_values.id AS value_id").
		Joins("JOIN product_attribute_values pav ON pav.attribute_value_id = attribute_values.id").
		Where("pav.product_id = ?", productID).
		Order("attribute_values.attribute_id, attribute_values.id").
		Scan(&pairs).Error
	return pairs, err
}

func (r *CatalogRepository) VariantAttributeIDs(ctx context.Context, subcategoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttribute{}).
		Joins("JOIN attributes ON attributes.id = subcategory_attributes.attribute_id").
		Where("subcategory_attributes.subcategory_id = ? AND attributes.is_variant_generator = ?", subcategoryID, true).
		Order("subcategory_attributes.display_order, subcategory_attributes.attribute_id").
		Pluck("subcategory_attributes.attribute_id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) SubcategoryAttributeIDs(ctx context.Context, subcategoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.SubcategoryAttribute{}).
		Where("subcategory_id = ?", subcategoryID).
		Order("display_order, attribute_id").
		Pluck("attribute_id", &ids).Error
	return ids, err
}

func (r *CatalogRepository) ReplaceProductAttributes(ctx context.Context, productID uint, attributeIDs []uint) error {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if len(attributeIDs) > 0 {
		query = query.Where("attribute_id NOT IN ?", attributeIDs)
	}
	if err := query.Delete(&models.ProductAttribute{}).Error; err != nil {
		return err
	}
	if len(attributeIDs) == 0 {
		return nil
	}
	rows := make([]models.ProductAttribute, len(attributeIDs))
	for i, attributeID := range attributeIDs {
		rows[i] = models.ProductAttribute{ProductID: productID, AttributeID: attributeID}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// Variants

// VariantAxes returns the subcategory's variant-generating attributes in
// pivot display order, each restricted to the values legal for the
// subcategory and assigned to the product, ordered by value id.
func (r *CatalogRepository) VariantAxes(ctx context.Context, productID, subcategoryID uint) ([]models.VariantAxis, error) {
	var attrs []models.Attribute
	err := r.db.WithContext(ctx).Model(&models.Attribute{}).
		Select("attributes.*").
		Joins("JOIN subcategory_attributes sa ON sa.attribute_id = attributes.id").
		Where("sa.subcategory_id = ? AND attributes.is_variant_generator = ?", subcategoryID, true).
		Order("sa.display_order, attributes.id").
		Find(&attrs).Error
	if err != nil {
		return nil, fmt.Errorf("load variant attributes: %w", err)
	}

	axes := make([]models.VariantAxis, 0, len(attrs))
	for _, attr := range attrs {
		legal := r.db.Model(&models.SubcategoryAttributeValue{}).
			Select("attribute_value_id").
			Where("subcategory_id = ? AND attribute_id = ?", subcategoryID, attr.ID)
		assigned := r.db.Model(&models.ProductAttributeValue{}).
			Select("attribute_value_id").
			Where("product_id = ?", productID)

		var values []models.AttributeValue
		err := r.db.WithContext(ctx).
			Where("attribute_id = ?", attr.ID).
			Where("id IN (?)", legal).
			Where("id IN (?)", assigned).
			Order("id").
			Find(&values).Error
		if err != nil {
			return nil, fmt.Errorf("load eligible values for attribute %d: %w", attr.ID, err)
		}

		axes = append(axes, models.VariantAxis{
			AttributeID:   attr.ID,
			AttributeName: attr.Name,
			Values:        values,
		})
	}
	return axes, nil
}

func (r *CatalogRepository) DeleteProductVariants(ctx context.Context, productID uint) error {
	variantIDs := r.db.Model(&models.Variant{}).Select("id").Where("product_id = ?", productID)
	if err := r.db.WithContext(ctx).
		Where("variant_id IN (?)", variantIDs).
		Delete(&models.VariantAttributeValue{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.Variant{}).Error
}

func (r *CatalogRepository) CreateVariant(ctx context.Context, v *models.Variant, valueIDs []uint) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return err
	}
	if len(valueIDs) == 0 {
		return nil
	}
	rows := make([]models.VariantAttributeValue, len(valueIDs))
	for i, valueID := range valueIDs {
		rows[i] = models.VariantAttributeValue{VariantID: v.ID, AttributeValueID: valueID}
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ProductVariants returns the product's variants with their value
// combinations loaded, ordered by id.
func (r *CatalogRepository) ProductVariants(ctx context.Context, productID uint) ([]models.Variant, error) {
	var variants []models.Variant
	err := r.db.WithContext(ctx).Preload("AttributeValues").
		Where("product_id = ?", productID).
		Order("id").
		Find(&variants).Error
	return variants, err
}

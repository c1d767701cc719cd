package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product represents a product entity. Attribute values are attached and
// replaced through the product attribute service only; the Attributes set is
// a denormalized copy of the subcategory's attribute list.
type Product struct {
	ID              uint             `json:"id" gorm:"primarykey"`
	SubcategoryID   uint             `json:"subcategoryId" gorm:"not null;index"`
	Name            string           `json:"name" gorm:"not null"`
	SKU             string           `json:"sku" gorm:"not null;uniqueIndex"`
	Description     *string          `json:"description,omitempty"`
	Price           decimal.Decimal  `json:"price" gorm:"type:numeric(12,2);not null"`
	Status          ProductStatus    `json:"status" gorm:"not null;default:'DRAFT'"`
	AttributeValues []AttributeValue `json:"attributeValues,omitempty" gorm:"many2many:product_attribute_values"`
	Attributes      []Attribute      `json:"attributes,omitempty" gorm:"many2many:product_attributes"`
	Variants        []Variant        `json:"variants,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Variant is one purchasable combination of variant-generating attribute
// values. Variants are entirely derived: the generation engine deletes and
// rebuilds them whenever variant-generating assignments change, so any
// hand-edited price or stock on a variant does not survive regeneration.
type Variant struct {
	ID              uint             `json:"id" gorm:"primarykey"`
	ProductID       uint             `json:"productId" gorm:"not null;index"`
	SKU             string           `json:"sku" gorm:"not null;uniqueIndex"`
	Name            string           `json:"name" gorm:"not null"`
	Price           decimal.Decimal  `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity        int              `json:"quantity" gorm:"not null;default:0"`
	AttributeValues []AttributeValue `json:"attributeValues,omitempty" gorm:"many2many:variant_attribute_values"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// ProductAttributeValue is the join row behind Product.AttributeValues,
// exposed for insert-ignore and detach writes on the pivot.
type ProductAttributeValue struct {
	ProductID        uint `gorm:"primaryKey;autoIncrement:false"`
	AttributeValueID uint `gorm:"primaryKey;autoIncrement:false"`
}

// ProductAttribute is the join row behind Product.Attributes.
type ProductAttribute struct {
	ProductID   uint `gorm:"primaryKey;autoIncrement:false"`
	AttributeID uint `gorm:"primaryKey;autoIncrement:false"`
}

// VariantAttributeValue is the join row behind Variant.AttributeValues.
type VariantAttributeValue struct {
	VariantID        uint `gorm:"primaryKey;autoIncrement:false"`
	AttributeValueID uint `gorm:"primaryKey;autoIncrement:false"`
}

// AttributeValuePair identifies one value assigned under one attribute.
type AttributeValuePair struct {
	AttributeID uint `json:"attribute_id" binding:"required"`
	ValueID     uint `json:"value_id" binding:"required"`
}

// AttributeChangeSet is the add/remove/replace contract for mutating a
// product's attribute-value assignment.
type AttributeChangeSet struct {
	Add     []AttributeValuePair `json:"add,omitempty"`
	Remove  []AttributeValuePair `json:"remove,omitempty"`
	Replace []AttributeValuePair `json:"replace,omitempty"`
}

// Empty reports whether the change set carries no work.
func (c AttributeChangeSet) Empty() bool {
	return len(c.Add) == 0 && len(c.Remove) == 0 && len(c.Replace) == 0
}

// VariantAxis is one variant-generating attribute together with the values
// eligible for expansion on a given product: values both legal for the
// product's subcategory and currently assigned to the product, ordered by id.
type VariantAxis struct {
	AttributeID   uint             `json:"attributeId"`
	AttributeName string           `json:"attributeName"`
	Values        []AttributeValue `json:"values"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the Variant model
func (Variant) TableName() string {
	return "variants"
}

// TableName returns the table name for the ProductAttributeValue pivot
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// TableName returns the table name for the ProductAttribute pivot
func (ProductAttribute) TableName() string {
	return "product_attributes"
}

// TableName returns the table name for the VariantAttributeValue pivot
func (VariantAttributeValue) TableName() string {
	return "variant_attribute_values"
}

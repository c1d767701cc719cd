package models

import (
	"time"
)

// Category represents a top-level product category
type Category struct {
	ID            uint          `json:"id" gorm:"primarykey"`
	Name          string        `json:"name" gorm:"not null;uniqueIndex"`
	Description   *string       `json:"description,omitempty"`
	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Subcategory scopes which attributes and which attribute values are legal
// for products placed in it.
type Subcategory struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	CategoryID uint      `json:"categoryId" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SubcategoryAttribute links an attribute to a subcategory. The pivot carries
// whether the attribute is required for products in the subcategory and the
// order it is displayed and expanded in.
type SubcategoryAttribute struct {
	SubcategoryID uint      `json:"subcategoryId" gorm:"primaryKey;autoIncrement:false"`
	AttributeID   uint      `json:"attributeId" gorm:"primaryKey;autoIncrement:false"`
	IsRequired    bool      `json:"isRequired" gorm:"not null;default:false"`
	DisplayOrder  int       `json:"displayOrder" gorm:"not null;default:0"`
	Attribute     Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SubcategoryAttributeValue is the authoritative allow-list of values legal
// for products in a subcategory. The attribute id is carried alongside the
// value id for integrity and keyed lookups.
type SubcategoryAttributeValue struct {
	SubcategoryID    uint `json:"subcategoryId" gorm:"primaryKey;autoIncrement:false;index:idx_scoped_values_sub_attr"`
	AttributeID      uint `json:"attributeId" gorm:"not null;index:idx_scoped_values_sub_attr"`
	AttributeValueID uint `json:"attributeValueId" gorm:"primaryKey;autoIncrement:false"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the Subcategory model
func (Subcategory) TableName() string {
	return "subcategories"
}

// TableName returns the table name for the SubcategoryAttribute pivot
func (SubcategoryAttribute) TableName() string {
	return "subcategory_attributes"
}

// TableName returns the table name for the SubcategoryAttributeValue pivot
func (SubcategoryAttributeValue) TableName() string {
	return "subcategory_attribute_values"
}

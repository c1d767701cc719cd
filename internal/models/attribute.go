package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Representation types for attribute value display metadata
const (
	RepresentationTypeColor = "color"
	RepresentationTypeImage = "image"
	RepresentationTypeText  = "text"
)

// Representation describes how an attribute value is displayed: a color
// swatch, an image, or plain text. Unknown sub-keys are tolerated; accessors
// are nil for anything the stored document does not carry.
type Representation struct {
	Type      string  `json:"type"`
	Hex       *string `json:"hex,omitempty"`
	ImagePath *string `json:"image_path,omitempty"`
	Value     *string `json:"value,omitempty"`
}

// Attribute represents a named axis of product differentiation (e.g. Color).
// Attributes flagged as variant generators produce one purchasable variant
// per value combination.
type Attribute struct {
	ID                 uint             `json:"id" gorm:"primarykey"`
	Name               string           `json:"name" gorm:"not null;uniqueIndex:idx_attributes_name"`
	IsVariantGenerator bool             `json:"isVariantGenerator" gorm:"not null;default:false"`
	DisplayOrder       int              `json:"displayOrder" gorm:"not null;default:0"`
	HelpText           *string          `json:"helpText,omitempty"`
	Values             []AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// AttributeValue is one concrete value on an attribute's axis (e.g. Red).
type AttributeValue struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	AttributeID    uint      `json:"attributeId" gorm:"not null;index;uniqueIndex:idx_attribute_values_attr_name"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex:idx_attribute_values_attr_name"`
	Representation *JSON     `json:"representation,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ParsedRepresentation normalizes the stored representation document. When no
// representation is stored, a text representation of the value's name is
// synthesized. The stored shape is not validated; missing sub-keys come back
// as nil pointers.
func (v *AttributeValue) ParsedRepresentation() Representation {
	if v.Representation == nil || len(*v.Representation) == 0 {
		name := v.Name
		return Representation{Type: RepresentationTypeText, Value: &name}
	}

	raw := *v.Representation
	rep := Representation{}
	if t, ok := raw["type"].(string); ok {
		rep.Type = t
	}
	if s, ok := raw["hex"].(string); ok {
		rep.Hex = &s
	}
	if s, ok := raw["image_path"].(string); ok {
		rep.ImagePath = &s
	}
	if s, ok := raw["value"].(string); ok {
		rep.Value = &s
	}
	return rep
}

// TableName returns the table name for the Attribute model
func (Attribute) TableName() string {
	return "attributes"
}

// TableName returns the table name for the AttributeValue model
func (AttributeValue) TableName() string {
	return "attribute_values"
}

package models

import (
	"fmt"
	"strings"
)

// MissingRequiredAttributeError is returned when one or more attributes the
// subcategory marks required are absent from a product's assignment.
type MissingRequiredAttributeError struct {
	AttributeNames []string
}

func (e *MissingRequiredAttributeError) Error() string {
	return fmt.Sprintf("missing required attributes: %s", strings.Join(e.AttributeNames, ", "))
}

// InvalidAttributeValueError is returned when supplied value ids are not in
// the subcategory's legal set for their attribute.
type InvalidAttributeValueError struct {
	ValueIDs []uint
}

func (e *InvalidAttributeValueError) Error() string {
	ids := make([]string, len(e.ValueIDs))
	for i, id := range e.ValueIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("attribute values not allowed for subcategory: %s", strings.Join(ids, ", "))
}

// InvalidAttributeIDError is returned when a referenced attribute does not
// exist, or a value was submitted under an attribute it does not belong to.
type InvalidAttributeIDError struct {
	AttributeID uint
}

func (e *InvalidAttributeIDError) Error() string {
	return fmt.Sprintf("invalid attribute id: %d", e.AttributeID)
}

// InvalidValueIDError is returned when a referenced attribute value does not
// exist.
type InvalidValueIDError struct {
	ValueID uint
}

func (e *InvalidValueIDError) Error() string {
	return fmt.Sprintf("invalid attribute value id: %d", e.ValueID)
}

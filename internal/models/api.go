package models

// CreateAttributeRequest represents a request to create a new attribute
type CreateAttributeRequest struct {
	Name               string  `json:"name" binding:"required"`
	IsVariantGenerator bool    `json:"isVariantGenerator"`
	DisplayOrder       int     `json:"displayOrder"`
	HelpText           *string `json:"helpText,omitempty"`
}

// UpdateAttributeRequest represents a request to update an attribute
type UpdateAttributeRequest struct {
	Name               *string `json:"name,omitempty"`
	IsVariantGenerator *bool   `json:"isVariantGenerator,omitempty"`
	DisplayOrder       *int    `json:"displayOrder,omitempty"`
	HelpText           *string `json:"helpText,omitempty"`
}

// CreateAttributeValueRequest represents a request to create a value under an
// attribute
type CreateAttributeValueRequest struct {
	Name           string `json:"name" binding:"required"`
	Representation *JSON  `json:"representation,omitempty"`
}

// UpdateAttributeValueRequest represents a request to update a value
type UpdateAttributeValueRequest struct {
	Name           *string `json:"name,omitempty"`
	Representation *JSON   `json:"representation,omitempty"`
}

// LinkSubcategoryAttributeRequest links an attribute to a subcategory with
// its pivot data
type LinkSubcategoryAttributeRequest struct {
	IsRequired   bool `json:"isRequired"`
	DisplayOrder int  `json:"displayOrder"`
}

// ReplaceLegalValuesRequest replaces the allow-list of values legal for one
// attribute in a subcategory
type ReplaceLegalValuesRequest struct {
	ValueIDs []uint `json:"valueIds" binding:"required"`
}

// UpdateProductAttributeValuesRequest is the handler payload for the product
// attribute update entrypoint
type UpdateProductAttributeValuesRequest struct {
	Add     []AttributeValuePair `json:"add,omitempty"`
	Remove  []AttributeValuePair `json:"remove,omitempty"`
	Replace []AttributeValuePair `json:"replace,omitempty"`
}

// ErrorResponse is the error envelope returned by all handlers
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// AttributeUpdateResponse reports the outcome of a product attribute update,
// including whether variant regeneration ran and what it produced.
type AttributeUpdateResponse struct {
	Success            bool      `json:"success"`
	RegenerationNeeded bool      `json:"regenerationNeeded"`
	Variants           []Variant `json:"variants,omitempty"`
}

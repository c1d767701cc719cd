// Package attribute implements the attribute validation and product
// attribute assignment services.
package attribute

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// Legal-value lookups are a pure function of the subcategory pivot tables,
// so entries stay valid until the pivot is written. Writers must call
// InvalidateLegalValues after every pivot mutation.
const legalValuesCacheTTL = 24 * time.Hour

// RuleSource exposes the subcategory scoping pivots the validator reads.
type RuleSource interface {
	// LegalValueIDs returns the value ids legal for one attribute in one
	// subcategory, ordered by id.
	LegalValueIDs(ctx context.Context, subcategoryID, attributeID uint) ([]uint, error)
	// AllowedValueIDs returns every value id legal anywhere in the
	// subcategory.
	AllowedValueIDs(ctx context.Context, subcategoryID uint) ([]uint, error)
	// RequiredAttributes returns the subcategory's required attribute pivot
	// rows with their attributes loaded, ordered by display order.
	RequiredAttributes(ctx context.Context, subcategoryID uint) ([]models.SubcategoryAttribute, error)
}

// Cache is the get-or-compute cache the validator uses for legal-value
// lookups.
type Cache interface {
	Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func() (interface{}, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}

// ValidationService is the gatekeeper for "is this attribute/value
// combination legal for this subcategory".
type ValidationService struct {
	source RuleSource
	cache  Cache
	log    *logrus.Logger
}

func NewValidationService(source RuleSource, cache Cache, log *logrus.Logger) *ValidationService {
	return &ValidationService{source: source, cache: cache, log: log}
}

func legalValuesKey(subcategoryID, attributeID uint) string {
	return fmt.Sprintf("legal-values:%d:%d", subcategoryID, attributeID)
}

func (s *ValidationService) legalValueIDs(ctx context.Context, subcategoryID, attributeID uint) ([]uint, error) {
	var ids []uint
	err := s.cache.Remember(ctx, legalValuesKey(subcategoryID, attributeID), legalValuesCacheTTL, &ids, func() (interface{}, error) {
		return s.source.LegalValueIDs(ctx, subcategoryID, attributeID)
	})
	if err != nil {
		return nil, fmt.Errorf("lookup legal values for subcategory %d attribute %d: %w", subcategoryID, attributeID, err)
	}
	return ids, nil
}

// ValidateValuesForSubcategory checks that every given value id is in the
// subcategory's legal set for the attribute. Fails with
// InvalidAttributeValueError naming the offending ids.
func (s *ValidationService) ValidateValuesForSubcategory(ctx context.Context, subcategoryID, attributeID uint, valueIDs []uint) error {
	legal, err := s.legalValueIDs(ctx, subcategoryID, attributeID)
	if err != nil {
		return err
	}

	legalSet := make(map[uint]struct{}, len(legal))
	for _, id := range legal {
		legalSet[id] = struct{}{}
	}

	var invalid []uint
	for _, id := range valueIDs {
		if _, ok := legalSet[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		s.log.WithFields(logrus.Fields{
			"subcategory_id": subcategoryID,
			"attribute_id":   attributeID,
			"value_ids":      invalid,
		}).Warn("attribute values rejected for subcategory")
		return &models.InvalidAttributeValueError{ValueIDs: invalid}
	}
	return nil
}

// ValidateAttributeSet checks a full proposed assignment for a product in
// the subcategory. The required-attribute check runs strictly before the
// value-legality check: when both are violated the caller sees
// MissingRequiredAttributeError.
func (s *ValidationService) ValidateAttributeSet(ctx context.Context, subcategoryID uint, pairs []models.AttributeValuePair) error {
	if err := s.ValidateRequiredAttributes(ctx, subcategoryID, pairs); err != nil {
		return err
	}

	allowed, err := s.source.AllowedValueIDs(ctx, subcategoryID)
	if err != nil {
		return fmt.Errorf("lookup allowed values for subcategory %d: %w", subcategoryID, err)
	}
	allowedSet := make(map[uint]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}

	var invalid []uint
	for _, pair := range pairs {
		if _, ok := allowedSet[pair.ValueID]; !ok {
			invalid = append(invalid, pair.ValueID)
		}
	}
	if len(invalid) > 0 {
		s.log.WithFields(logrus.Fields{
			"subcategory_id": subcategoryID,
			"value_ids":      invalid,
		}).Warn("attribute set rejected, values not allowed for subcategory")
		return &models.InvalidAttributeValueError{ValueIDs: invalid}
	}
	return nil
}

// ValidateRequiredAttributes checks that every attribute the subcategory
// marks required appears in the given pairs. Fails with
// MissingRequiredAttributeError listing the missing attribute names.
func (s *ValidationService) ValidateRequiredAttributes(ctx context.Context, subcategoryID uint, pairs []models.AttributeValuePair) error {
	required, err := s.source.RequiredAttributes(ctx, subcategoryID)
	if err != nil {
		return fmt.Errorf("lookup required attributes for subcategory %d: %w", subcategoryID, err)
	}

	provided := make(map[uint]struct{}, len(pairs))
	for _, pair := range pairs {
		provided[pair.AttributeID] = struct{}{}
	}

	var missing []string
	for _, row := range required {
		if _, ok := provided[row.AttributeID]; !ok {
			missing = append(missing, row.Attribute.Name)
		}
	}
	if len(missing) > 0 {
		s.log.WithFields(logrus.Fields{
			"subcategory_id": subcategoryID,
			"attributes":     missing,
		}).Warn("required attributes missing from assignment")
		return &models.MissingRequiredAttributeError{AttributeNames: missing}
	}
	return nil
}

// InvalidateLegalValues drops the cached allow-list for one (subcategory,
// attribute) pair. Must be called after every write to the subcategory
// attribute-value pivot.
func (s *ValidationService) InvalidateLegalValues(ctx context.Context, subcategoryID, attributeID uint) error {
	return s.cache.Invalidate(ctx, legalValuesKey(subcategoryID, attributeID))
}

package attribute

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/services/variant"
)

// Store is the persistence surface the product attribute service needs. It
// embeds the variant engine's store so regeneration runs against the same
// transaction.
type Store interface {
	variant.Store

	// LockProduct loads the product under a row-level lock (SELECT ... FOR
	// UPDATE), serializing concurrent attribute updates on one product.
	LockProduct(ctx context.Context, productID uint) (*models.Product, error)
	ProductByID(ctx context.Context, productID uint) (*models.Product, error)
	// ValuesByIDs loads attribute values by id; missing ids are simply
	// absent from the result.
	ValuesByIDs(ctx context.Context, ids []uint) ([]models.AttributeValue, error)
	// AttachProductValues inserts pivot rows, ignoring ones that already
	// exist.
	AttachProductValues(ctx context.Context, productID uint, valueIDs []uint) error
	DetachProductValues(ctx context.Context, productID uint, valueIDs []uint) error
	// ReplaceProductValues syncs the product's assignment to exactly the
	// given set, detaching anything not listed.
	ReplaceProductValues(ctx context.Context, productID uint, valueIDs []uint) error
	// AssignedValuePairs returns the product's current full assignment.
	AssignedValuePairs(ctx context.Context, productID uint) ([]models.AttributeValuePair, error)
	// VariantAttributeIDs returns the subcategory's variant-generating
	// attribute ids.
	VariantAttributeIDs(ctx context.Context, subcategoryID uint) ([]uint, error)
	// SubcategoryAttributeIDs returns every attribute id linked to the
	// subcategory, ordered by display order.
	SubcategoryAttributeIDs(ctx context.Context, subcategoryID uint) ([]uint, error)
	// ReplaceProductAttributes syncs the product's denormalized attribute
	// set to exactly the given ids.
	ReplaceProductAttributes(ctx context.Context, productID uint, attributeIDs []uint) error

	// InTransaction runs fn against a transaction-scoped store, rolling
	// back on any error.
	InTransaction(ctx context.Context, fn func(Store) error) error
}

// UpdateResult reports the outcome of one attribute update, including the
// explicit regeneration signal for coordinating layers that want to act on
// it themselves.
type UpdateResult struct {
	RegenerationNeeded bool
	Variants           []models.Variant
}

// ProductAttributeService is the single entry point for mutating a product's
// attribute-value assignment. It owns the add/remove/replace contract and
// the transaction boundary.
type ProductAttributeService struct {
	store     Store
	validator *ValidationService
	engine    *variant.Engine
	log       *logrus.Logger
}

func NewProductAttributeService(store Store, validator *ValidationService, engine *variant.Engine, log *logrus.Logger) *ProductAttributeService {
	return &ProductAttributeService{
		store:     store,
		validator: validator,
		engine:    engine,
		log:       log,
	}
}

// HandleAttributeUpdate applies a change set inside one transaction:
// add, then remove, then replace, then a required-attribute re-check on the
// resulting assignment, then variant regeneration when any changed value
// belongs to a variant-generating attribute. Any validation failure or
// storage error rolls the whole transaction back; partial attach/detach
// never persists.
func (s *ProductAttributeService) HandleAttributeUpdate(ctx context.Context, productID uint, changes models.AttributeChangeSet) (*UpdateResult, error) {
	result := &UpdateResult{}

	err := s.store.InTransaction(ctx, func(tx Store) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock product %d: %w", productID, err)
		}

		changed := make(map[uint]struct{})

		if len(changes.Add) > 0 {
			if err := s.resolvePairs(ctx, tx, changes.Add); err != nil {
				return err
			}
			for attributeID, valueIDs := range groupByAttribute(changes.Add) {
				if err := s.validator.ValidateValuesForSubcategory(ctx, product.SubcategoryID, attributeID, valueIDs); err != nil {
					return err
				}
				changed[attributeID] = struct{}{}
			}
			if err := tx.AttachProductValues(ctx, product.ID, valueIDs(changes.Add)); err != nil {
				return fmt.Errorf("attach values: %w", err)
			}
		}

		if len(changes.Remove) > 0 {
			// Removal cannot violate the allow-list; no validation needed.
			// Only values actually assigned count as a change, so detaching
			// an absent value never forces a regeneration.
			assigned, err := tx.AssignedValuePairs(ctx, product.ID)
			if err != nil {
				return fmt.Errorf("load current assignment: %w", err)
			}
			assignedSet := make(map[uint]struct{}, len(assigned))
			for _, pair := range assigned {
				assignedSet[pair.ValueID] = struct{}{}
			}
			for _, pair := range changes.Remove {
				if _, ok := assignedSet[pair.ValueID]; ok {
					changed[pair.AttributeID] = struct{}{}
				}
			}
			if err := tx.DetachProductValues(ctx, product.ID, valueIDs(changes.Remove)); err != nil {
				return fmt.Errorf("detach values: %w", err)
			}
		}

		if len(changes.Replace) > 0 {
			if err := s.resolvePairs(ctx, tx, changes.Replace); err != nil {
				return err
			}
			if err := s.validator.ValidateAttributeSet(ctx, product.SubcategoryID, changes.Replace); err != nil {
				return err
			}
			before, err := tx.AssignedValuePairs(ctx, product.ID)
			if err != nil {
				return fmt.Errorf("load current assignment: %w", err)
			}
			for _, attributeID := range changedAttributes(before, changes.Replace) {
				changed[attributeID] = struct{}{}
			}
			if err := tx.ReplaceProductValues(ctx, product.ID, valueIDs(changes.Replace)); err != nil {
				return fmt.Errorf("replace values: %w", err)
			}
		}

		// The required check must see post-update state.
		current, err := tx.AssignedValuePairs(ctx, product.ID)
		if err != nil {
			return fmt.Errorf("load updated assignment: %w", err)
		}
		if err := s.validator.ValidateRequiredAttributes(ctx, product.SubcategoryID, current); err != nil {
			return err
		}

		variantAttributeIDs, err := tx.VariantAttributeIDs(ctx, product.SubcategoryID)
		if err != nil {
			return fmt.Errorf("load variant attributes: %w", err)
		}
		for _, id := range variantAttributeIDs {
			if _, ok := changed[id]; ok {
				result.RegenerationNeeded = true
				break
			}
		}

		if result.RegenerationNeeded {
			variants, err := s.engine.Regenerate(ctx, tx, product)
			if err != nil {
				return err
			}
			result.Variants = variants
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"product_id":  productID,
		"regenerated": result.RegenerationNeeded,
		"variants":    len(result.Variants),
	}).Info("product attribute update applied")

	return result, nil
}

// RegenerateVariants rebuilds a product's variants from its current
// assignment without changing the assignment. Runs under the same product
// row lock as attribute updates.
func (s *ProductAttributeService) RegenerateVariants(ctx context.Context, productID uint) ([]models.Variant, error) {
	var variants []models.Variant
	err := s.store.InTransaction(ctx, func(tx Store) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock product %d: %w", productID, err)
		}
		variants, err = s.engine.Regenerate(ctx, tx, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// SyncProductAttributes re-derives the product's denormalized attribute set
// from its subcategory. Used after a product's subcategory changes; no value
// validation is performed.
func (s *ProductAttributeService) SyncProductAttributes(ctx context.Context, productID uint) error {
	return s.store.InTransaction(ctx, func(tx Store) error {
		product, err := tx.LockProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("lock product %d: %w", productID, err)
		}
		attributeIDs, err := tx.SubcategoryAttributeIDs(ctx, product.SubcategoryID)
		if err != nil {
			return fmt.Errorf("load subcategory attributes: %w", err)
		}
		return tx.ReplaceProductAttributes(ctx, product.ID, attributeIDs)
	})
}

// resolvePairs verifies every referenced value exists and belongs to the
// attribute it was submitted under.
func (s *ProductAttributeService) resolvePairs(ctx context.Context, tx Store, pairs []models.AttributeValuePair) error {
	values, err := tx.ValuesByIDs(ctx, valueIDs(pairs))
	if err != nil {
		return fmt.Errorf("resolve attribute values: %w", err)
	}
	byID := make(map[uint]models.AttributeValue, len(values))
	for _, v := range values {
		byID[v.ID] = v
	}

	for _, pair := range pairs {
		value, ok := byID[pair.ValueID]
		if !ok {
			return &models.InvalidValueIDError{ValueID: pair.ValueID}
		}
		if value.AttributeID != pair.AttributeID {
			return &models.InvalidAttributeIDError{AttributeID: pair.AttributeID}
		}
	}
	return nil
}

func valueIDs(pairs []models.AttributeValuePair) []uint {
	ids := make([]uint, len(pairs))
	for i, pair := range pairs {
		ids[i] = pair.ValueID
	}
	return ids
}

func groupByAttribute(pairs []models.AttributeValuePair) map[uint][]uint {
	grouped := make(map[uint][]uint)
	for _, pair := range pairs {
		grouped[pair.AttributeID] = append(grouped[pair.AttributeID], pair.ValueID)
	}
	return grouped
}

// changedAttributes returns the attribute ids whose value sets differ
// between the two assignments.
func changedAttributes(before, after []models.AttributeValuePair) []uint {
	beforeSet := make(map[models.AttributeValuePair]struct{}, len(before))
	for _, pair := range before {
		beforeSet[pair] = struct{}{}
	}
	afterSet := make(map[models.AttributeValuePair]struct{}, len(after))
	for _, pair := range after {
		afterSet[pair] = struct{}{}
	}

	changedSet := make(map[uint]struct{})
	for pair := range beforeSet {
		if _, ok := afterSet[pair]; !ok {
			changedSet[pair.AttributeID] = struct{}{}
		}
	}
	for pair := range afterSet {
		if _, ok := beforeSet[pair]; !ok {
			changedSet[pair.AttributeID] = struct{}{}
		}
	}

	ids := make([]uint, 0, len(changedSet))
	for id := range changedSet {
		ids = append(ids, id)
	}
	return ids
}

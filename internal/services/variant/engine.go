// Package variant implements the variant generation engine: it expands a
// product's variant-generating attribute values into concrete variant rows.
package variant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// Store is the persistence surface the engine needs. All methods are expected
// to run inside the caller's transaction.
type Store interface {
	// VariantAxes returns the subcategory's variant-generating attributes,
	// ordered by subcategory pivot display order then attribute id, each
	// restricted to the values legal for the subcategory and currently
	// assigned to the product, ordered by value id.
	VariantAxes(ctx context.Context, productID, subcategoryID uint) ([]models.VariantAxis, error)
	// DeleteProductVariants removes all of the product's variants and their
	// attribute-value links.
	DeleteProductVariants(ctx context.Context, productID uint) error
	// CreateVariant persists a variant and attaches the given value ids.
	CreateVariant(ctx context.Context, v *models.Variant, valueIDs []uint) error
}

type Engine struct {
	log *logrus.Logger
}

func NewEngine(log *logrus.Logger) *Engine {
	return &Engine{log: log}
}

// Regenerate rebuilds the product's variants from its current attribute
// assignment. Regeneration is always destructive: existing variants are
// deleted and the full Cartesian product of eligible values is materialized
// again. Combination sets have no stable identity to diff against, so
// per-variant overrides (custom price, stock) are lost on every run.
//
// A product with no eligible variant-generating values ends up with zero
// variants and sells as a single SKU.
func (e *Engine) Regenerate(ctx context.Context, store Store, product *models.Product) ([]models.Variant, error) {
	axes, err := store.VariantAxes(ctx, product.ID, product.SubcategoryID)
	if err != nil {
		return nil, fmt.Errorf("fetch variant axes: %w", err)
	}

	if err := store.DeleteProductVariants(ctx, product.ID); err != nil {
		return nil, fmt.Errorf("delete existing variants: %w", err)
	}

	eligible := make([]models.VariantAxis, 0, len(axes))
	for _, axis := range axes {
		if len(axis.Values) > 0 {
			eligible = append(eligible, axis)
		}
	}
	if len(eligible) == 0 {
		e.log.WithField("product_id", product.ID).Info("no eligible variant attributes, product sells as single SKU")
		return nil, nil
	}

	combinations := crossProduct(eligible)

	variants := make([]models.Variant, 0, len(combinations))
	for _, combo := range combinations {
		names := make([]string, len(combo))
		valueIDs := make([]uint, len(combo))
		for i, val := range combo {
			names[i] = val.Name
			valueIDs[i] = val.ID
		}

		v := models.Variant{
			ProductID: product.ID,
			SKU:       variantSKU(product.SKU),
			Name:      strings.Join(names, " / "),
			Price:     product.Price,
		}
		if err := store.CreateVariant(ctx, &v, valueIDs); err != nil {
			return nil, fmt.Errorf("create variant %q: %w", v.Name, err)
		}
		variants = append(variants, v)
	}

	e.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"attributes": len(eligible),
		"variants":   len(variants),
	}).Info("regenerated product variants")

	return variants, nil
}

// crossProduct expands the axes iteratively: the first axis seeds singleton
// combinations, then every existing combination is crossed with every value
// of each subsequent axis. Axis and value order are fixed by the store, which
// makes repeated runs produce the same combinations in the same order.
func crossProduct(axes []models.VariantAxis) [][]models.AttributeValue {
	combinations := [][]models.AttributeValue{}
	for _, val := range axes[0].Values {
		combinations = append(combinations, []models.AttributeValue{val})
	}

	for _, axis := range axes[1:] {
		next := make([][]models.AttributeValue, 0, len(combinations)*len(axis.Values))
		for _, combo := range combinations {
			for _, val := range axis.Values {
				extended := make([]models.AttributeValue, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, val))
			}
		}
		combinations = next
	}
	return combinations
}

func variantSKU(productSKU string) string {
	return fmt.Sprintf("%s-%s", productSKU, uuid.New().String()[:8])
}

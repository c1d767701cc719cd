package variant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

// --- Fake store ---

type fakeStore struct {
	axes          []models.VariantAxis
	axesErr       error
	createErr     error
	variants      []models.Variant
	variantValues map[uint][]uint
	deleteCalls   int
	nextID        uint
}

func newFakeStore(axes ...models.VariantAxis) *fakeStore {
	return &fakeStore{
		axes:          axes,
		variantValues: make(map[uint][]uint),
	}
}

func (f *fakeStore) VariantAxes(ctx context.Context, productID, subcategoryID uint) ([]models.VariantAxis, error) {
	if f.axesErr != nil {
		return nil, f.axesErr
	}
	return f.axes, nil
}

func (f *fakeStore) DeleteProductVariants(ctx context.Context, productID uint) error {
	f.deleteCalls++
	f.variants = nil
	f.variantValues = make(map[uint][]uint)
	return nil
}

func (f *fakeStore) CreateVariant(ctx context.Context, v *models.Variant, valueIDs []uint) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	v.ID = f.nextID
	f.variants = append(f.variants, *v)
	f.variantValues[v.ID] = valueIDs
	return nil
}

// --- Helpers ---

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func value(id uint, attributeID uint, name string) models.AttributeValue {
	return models.AttributeValue{ID: id, AttributeID: attributeID, Name: name}
}

func testProduct() *models.Product {
	return &models.Product{
		ID:            1,
		SubcategoryID: 10,
		SKU:           "SOFA-001",
		Price:         decimal.NewFromFloat(499.99),
	}
}

func variantNames(variants []models.Variant) []string {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = v.Name
	}
	return names
}

// --- Tests ---

func TestRegenerateSingleAxis(t *testing.T) {
	store := newFakeStore(models.VariantAxis{
		AttributeID:   2,
		AttributeName: "Color",
		Values:        []models.AttributeValue{value(21, 2, "Red"), value(22, 2, "Blue")},
	})
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	assert.Equal(t, []string{"Red", "Blue"}, variantNames(variants))
	assert.Equal(t, 1, store.deleteCalls, "existing variants must be deleted first")
	for _, v := range variants {
		assert.True(t, v.Price.Equal(decimal.NewFromFloat(499.99)), "variant price defaults to product price")
		assert.Contains(t, v.SKU, "SOFA-001-")
	}
}

func TestRegenerateCrossProduct(t *testing.T) {
	store := newFakeStore(
		models.VariantAxis{
			AttributeID:   2,
			AttributeName: "Color",
			Values:        []models.AttributeValue{value(21, 2, "Red"), value(22, 2, "Blue")},
		},
		models.VariantAxis{
			AttributeID:   3,
			AttributeName: "Size",
			Values:        []models.AttributeValue{value(31, 3, "S"), value(32, 3, "M")},
		},
	)
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	assert.Equal(t, []string{"Red / S", "Red / M", "Blue / S", "Blue / M"}, variantNames(variants))

	// Each variant carries exactly one value per axis.
	seen := make(map[string]bool)
	for _, v := range variants {
		ids := store.variantValues[v.ID]
		require.Len(t, ids, 2)
		key := fmt.Sprintf("%v", ids)
		assert.False(t, seen[key], "no duplicate combinations")
		seen[key] = true
	}
}

func TestRegenerateCombinatorialCompleteness(t *testing.T) {
	store := newFakeStore(
		models.VariantAxis{
			AttributeID: 2,
			Values:      []models.AttributeValue{value(21, 2, "a1"), value(22, 2, "a2")},
		},
		models.VariantAxis{
			AttributeID: 3,
			Values:      []models.AttributeValue{value(31, 3, "b1"), value(32, 3, "b2"), value(33, 3, "b3")},
		},
	)
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)
	assert.Len(t, variants, 6)
}

func TestRegenerateDeterministic(t *testing.T) {
	axes := []models.VariantAxis{
		{
			AttributeID: 2,
			Values:      []models.AttributeValue{value(21, 2, "Red"), value(22, 2, "Blue")},
		},
		{
			AttributeID: 3,
			Values:      []models.AttributeValue{value(31, 3, "S"), value(32, 3, "M")},
		},
	}
	engine := NewEngine(testLogger())

	store := newFakeStore(axes...)
	first, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	second, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	assert.Equal(t, variantNames(first), variantNames(second))
	assert.Equal(t, 2, store.deleteCalls)
	assert.Len(t, store.variants, len(second), "previous generation does not linger")
}

func TestRegenerateNoEligibleAttributes(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	assert.Empty(t, variants, "zero variants, not one default variant")
	assert.Equal(t, 1, store.deleteCalls, "existing variants are still deleted")
}

func TestRegenerateSkipsAxesWithoutValues(t *testing.T) {
	store := newFakeStore(
		models.VariantAxis{
			AttributeID: 2,
			Values:      []models.AttributeValue{value(21, 2, "Red")},
		},
		models.VariantAxis{AttributeID: 3, Values: nil},
	)
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)

	assert.Equal(t, []string{"Red"}, variantNames(variants))
}

func TestRegenerateAllAxesEmpty(t *testing.T) {
	store := newFakeStore(
		models.VariantAxis{AttributeID: 2, Values: nil},
		models.VariantAxis{AttributeID: 3, Values: nil},
	)
	engine := NewEngine(testLogger())

	variants, err := engine.Regenerate(context.Background(), store, testProduct())
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestRegenerateCreateError(t *testing.T) {
	store := newFakeStore(models.VariantAxis{
		AttributeID: 2,
		Values:      []models.AttributeValue{value(21, 2, "Red")},
	})
	store.createErr = errors.New("db down")
	engine := NewEngine(testLogger())

	_, err := engine.Regenerate(context.Background(), store, testProduct())
	assert.Error(t, err)
}

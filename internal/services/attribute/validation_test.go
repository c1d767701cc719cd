package attribute

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

// --- Fakes ---

type fakeRuleSource struct {
	legal         map[[2]uint][]uint // (subcategoryID, attributeID) -> value ids
	required      map[uint][]models.SubcategoryAttribute
	legalCalls    int
	allowedCalls  int
	requiredCalls int
	legalErr      error
}

func (f *fakeRuleSource) LegalValueIDs(ctx context.Context, subcategoryID, attributeID uint) ([]uint, error) {
	f.legalCalls++
	if f.legalErr != nil {
		return nil, f.legalErr
	}
	return f.legal[[2]uint{subcategoryID, attributeID}], nil
}

func (f *fakeRuleSource) AllowedValueIDs(ctx context.Context, subcategoryID uint) ([]uint, error) {
	f.allowedCalls++
	var ids []uint
	for key, values := range f.legal {
		if key[0] == subcategoryID {
			ids = append(ids, values...)
		}
	}
	return ids, nil
}

func (f *fakeRuleSource) RequiredAttributes(ctx context.Context, subcategoryID uint) ([]models.SubcategoryAttribute, error) {
	f.requiredCalls++
	return f.required[subcategoryID], nil
}

// memoryCache mirrors the redis-backed cache's marshal/unmarshal roundtrip
// so the validator's behavior with stale entries is exercised for real.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Remember(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func() (interface{}, error)) error {
	if raw, ok := c.entries[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	value, err := compute()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func requiredRow(attributeID uint, name string) models.SubcategoryAttribute {
	return models.SubcategoryAttribute{
		AttributeID: attributeID,
		IsRequired:  true,
		Attribute:   models.Attribute{ID: attributeID, Name: name},
	}
}

// --- ValidateValuesForSubcategory ---

func TestValidateValuesForSubcategory(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	tests := []struct {
		name        string
		attributeID uint
		valueIDs    []uint
		wantInvalid []uint
	}{
		{name: "all legal", attributeID: 2, valueIDs: []uint{21, 22}},
		{name: "single illegal", attributeID: 2, valueIDs: []uint{21, 999}, wantInvalid: []uint{999}},
		{name: "no legal values configured", attributeID: 3, valueIDs: []uint{31}, wantInvalid: []uint{31}},
		{name: "empty input passes", attributeID: 2, valueIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateValuesForSubcategory(context.Background(), 10, tt.attributeID, tt.valueIDs)
			if len(tt.wantInvalid) == 0 {
				assert.NoError(t, err)
				return
			}
			var invalidErr *models.InvalidAttributeValueError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, tt.wantInvalid, invalidErr.ValueIDs)
		})
	}
}

func TestLegalValuesAreCached(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21}))
	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{22}))

	assert.Equal(t, 1, source.legalCalls, "second lookup must hit the cache")
}

func TestInvalidateLegalValuesForcesRefetch(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	// Prime the cache, then grow the legal set. Until invalidation the
	// validator sees the stale allow-list.
	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21}))
	source.legal[[2]uint{10, 2}] = []uint{21, 22}

	err := svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{22})
	var invalidErr *models.InvalidAttributeValueError
	require.ErrorAs(t, err, &invalidErr)

	require.NoError(t, svc.InvalidateLegalValues(context.Background(), 10, 2))
	assert.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{22}))
	assert.Equal(t, 2, source.legalCalls)
}

func TestInvalidationRejectsRemovedValue(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	// Prime the cache, then shrink the allow-list the way a value delete
	// leaves the pivot. The stale entry keeps accepting 21 until the delete
	// path's invalidation hook runs.
	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21}))
	source.legal[[2]uint{10, 2}] = []uint{22}

	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21}),
		"stale allow-list still served from cache")

	require.NoError(t, svc.InvalidateLegalValues(context.Background(), 10, 2))

	err := svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21})
	var invalidErr *models.InvalidAttributeValueError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, []uint{21}, invalidErr.ValueIDs)
}

func TestCacheKeyIsScopedPerAttribute(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21},
			{10, 3}: {31},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21}))
	require.NoError(t, svc.ValidateValuesForSubcategory(context.Background(), 10, 3, []uint{31}))

	assert.Equal(t, 2, source.legalCalls, "each (subcategory, attribute) pair has its own cache entry")
}

func TestValidateValuesSourceError(t *testing.T) {
	source := &fakeRuleSource{legalErr: errors.New("db down")}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	err := svc.ValidateValuesForSubcategory(context.Background(), 10, 2, []uint{21})
	assert.Error(t, err)
}

// --- ValidateRequiredAttributes / ValidateAttributeSet ---

func TestValidateRequiredAttributes(t *testing.T) {
	source := &fakeRuleSource{
		required: map[uint][]models.SubcategoryAttribute{
			10: {requiredRow(2, "Color"), requiredRow(3, "Style")},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	tests := []struct {
		name        string
		pairs       []models.AttributeValuePair
		wantMissing []string
	}{
		{
			name: "all required present",
			pairs: []models.AttributeValuePair{
				{AttributeID: 2, ValueID: 21},
				{AttributeID: 3, ValueID: 31},
			},
		},
		{
			name:        "one required missing",
			pairs:       []models.AttributeValuePair{{AttributeID: 2, ValueID: 21}},
			wantMissing: []string{"Style"},
		},
		{
			name:        "empty assignment",
			pairs:       nil,
			wantMissing: []string{"Color", "Style"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateRequiredAttributes(context.Background(), 10, tt.pairs)
			if len(tt.wantMissing) == 0 {
				assert.NoError(t, err)
				return
			}
			var missingErr *models.MissingRequiredAttributeError
			require.ErrorAs(t, err, &missingErr)
			assert.Equal(t, tt.wantMissing, missingErr.AttributeNames)
		})
	}
}

func TestValidateAttributeSetRequiredCheckFirst(t *testing.T) {
	// Both checks would fail: Style is missing AND value 999 is illegal. The
	// required check wins.
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
		},
		required: map[uint][]models.SubcategoryAttribute{
			10: {requiredRow(3, "Style")},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	err := svc.ValidateAttributeSet(context.Background(), 10, []models.AttributeValuePair{
		{AttributeID: 2, ValueID: 999},
	})

	var missingErr *models.MissingRequiredAttributeError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, []string{"Style"}, missingErr.AttributeNames)
	assert.Equal(t, 0, source.allowedCalls, "legality is not consulted once required fails")
}

func TestValidateAttributeSetIllegalValue(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
		},
		required: map[uint][]models.SubcategoryAttribute{
			10: {requiredRow(2, "Color")},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	err := svc.ValidateAttributeSet(context.Background(), 10, []models.AttributeValuePair{
		{AttributeID: 2, ValueID: 999},
	})

	var invalidErr *models.InvalidAttributeValueError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, []uint{999}, invalidErr.ValueIDs)
}

func TestValidateAttributeSetValid(t *testing.T) {
	source := &fakeRuleSource{
		legal: map[[2]uint][]uint{
			{10, 2}: {21, 22},
			{10, 3}: {31},
		},
		required: map[uint][]models.SubcategoryAttribute{
			10: {requiredRow(2, "Color"), requiredRow(3, "Style")},
		},
	}
	svc := NewValidationService(source, newMemoryCache(), discardLogger())

	err := svc.ValidateAttributeSet(context.Background(), 10, []models.AttributeValuePair{
		{AttributeID: 2, ValueID: 21},
		{AttributeID: 3, ValueID: 31},
	})
	assert.NoError(t, err)
}

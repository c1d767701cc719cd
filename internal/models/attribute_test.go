package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedRepresentation(t *testing.T) {
	tests := []struct {
		name  string
		value AttributeValue
		want  Representation
	}{
		{
			name:  "nil representation falls back to text with value name",
			value: AttributeValue{Name: "Red"},
			want:  Representation{Type: RepresentationTypeText, Value: strPtr("Red")},
		},
		{
			name:  "empty document falls back to text",
			value: AttributeValue{Name: "Blue", Representation: &JSON{}},
			want:  Representation{Type: RepresentationTypeText, Value: strPtr("Blue")},
		},
		{
			name: "color with hex",
			value: AttributeValue{
				Name:           "Red",
				Representation: &JSON{"type": "color", "hex": "#FF0000"},
			},
			want: Representation{Type: RepresentationTypeColor, Hex: strPtr("#FF0000")},
		},
		{
			name: "color missing hex keeps nil hex",
			value: AttributeValue{
				Name:           "Red",
				Representation: &JSON{"type": "color"},
			},
			want: Representation{Type: RepresentationTypeColor},
		},
		{
			name: "image with path",
			value: AttributeValue{
				Name:           "Oak",
				Representation: &JSON{"type": "image", "image_path": "/swatches/oak.png"},
			},
			want: Representation{Type: RepresentationTypeImage, ImagePath: strPtr("/swatches/oak.png")},
		},
		{
			name: "explicit text value",
			value: AttributeValue{
				Name:           "Large",
				Representation: &JSON{"type": "text", "value": "L"},
			},
			want: Representation{Type: RepresentationTypeText, Value: strPtr("L")},
		},
		{
			name: "non-string sub-keys are ignored",
			value: AttributeValue{
				Name:           "Red",
				Representation: &JSON{"type": "color", "hex": 42},
			},
			want: Representation{Type: RepresentationTypeColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.ParsedRepresentation())
		})
	}
}

func TestJSONScanRoundtrip(t *testing.T) {
	doc := JSON{"type": "color", "hex": "#00FF00"}

	raw, err := doc.Value()
	require.NoError(t, err)

	var scanned JSON
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, doc, scanned)
}

func TestJSONScanNil(t *testing.T) {
	var scanned JSON
	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
}

func strPtr(s string) *string { return &s }

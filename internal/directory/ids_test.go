package directory_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UnknownOlympus/athena/internal/directory"
	"github.com/UnknownOlympus/athena/internal/models"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "42", "42"},
		{"padded string", " 42 ", "42"},
		{"model id", models.ID("abc"), "abc"},
		{"int", 42, "42"},
		{"int64", int64(42), "42"},
		{"json number", json.Number("42"), "42"},
		{"whole float", float64(42), "42"},
		{"fractional float", 4.5, "4.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, directory.NormalizeID(tt.input))
		})
	}
}

func TestNormalizeID_NumberAndStringAgree(t *testing.T) {
	var fromNumber, fromString any
	_ = json.Unmarshal([]byte(`7`), &fromNumber)
	_ = json.Unmarshal([]byte(`"7"`), &fromString)

	assert.Equal(t, directory.NormalizeID(fromString), directory.NormalizeID(fromNumber))
}

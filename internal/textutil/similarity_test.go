package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Margherita Pizza", "margherita pizza"},
		{"  MARGHERITA   PIZZA!  ", "margherita pizza"},
		{"Mac & Cheese", "mac cheese"},
		{"Crème Brûlée", "crème brûlée"},
		{"***", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestNameSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Caesar Salad", "caesar   SALAD!"))
}

func TestNameSimilarity_Close(t *testing.T) {
	sim := NameSimilarity("Margherita Pizza", "Margarita Pizza")
	assert.Greater(t, sim, 0.85)
	assert.Less(t, sim, 1.0)
}

func TestNameSimilarity_Distant(t *testing.T) {
	assert.Less(t, NameSimilarity("Caesar Salad", "Chocolate Lava Cake"), 0.5)
}

func TestNameSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, NameSimilarity("", "Caesar Salad"))
	assert.Equal(t, 0.0, NameSimilarity("!!!", "Caesar Salad"))
}

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty input", input: "", expected: ""},
		{name: "plain name untouched", input: "東京都", expected: "東京都"},
		{name: "leading and trailing spaces", input: "  北海道 ", expected: "北海道"},
		{name: "internal half-width space", input: "札幌 市", expected: "札幌市"},
		{name: "internal full-width space", input: "札幌　市", expected: "札幌市"},
		{name: "tabs and newlines", input: "\t千代田区\n", expected: "千代田区"},
		{name: "all whitespace", input: " 　\t", expected: ""},
		{name: "case preserved", input: "Abc Def", expected: "AbcDef"},
		{name: "separator stripped", input: "a|b", expected: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name     string
		pref     string
		city     string
		year     string
		month    string
		expected string
	}{
		{
			name: "plain parts",
			pref: "東京都", city: "千代田区", year: "2023", month: "4",
			expected: "東京都|千代田区|2023|4",
		},
		{
			name: "whitespace variants collapse to same key",
			pref: " 東京都　", city: "千代田 区", year: " 2023", month: "4 ",
			expected: "東京都|千代田区|2023|4",
		},
		{
			name: "empty place parts keep separators",
			pref: "", city: "", year: "2023", month: "4",
			expected: "||2023|4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildKey(tt.pref, tt.city, tt.year, tt.month))
		})
	}
}

func TestBuildKeyWhitespaceInvariance(t *testing.T) {
	a := BuildKey("北海道", "札幌市", "2022", "12")
	b := BuildKey("　北海道 ", " 札　幌市", "2022", "12")
	assert.Equal(t, a, b)
}

func TestBuildKeyCaseSensitive(t *testing.T) {
	// No case folding: differing case means differing key.
	assert.NotEqual(t, BuildKey("Tokyo", "Chiyoda", "2023", "4"), BuildKey("tokyo", "Chiyoda", "2023", "4"))
}

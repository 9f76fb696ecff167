package normalizer

import (
	"testing"
)

// TestNormalize_Vietnamese ensures diacritics fold to plain ASCII
func TestNormalize_Vietnamese(t *testing.T) {
	n := NewTagTextNormalizer()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Dam_My",
			input:    "Đam mỹ",
			expected: "dam my",
		},
		{
			name:     "Nguoc_Than",
			input:    "Ngược thân",
			expected: "nguoc than",
		},
		{
			name:     "Happy_Ending_Upper",
			input:    "HE",
			expected: "he",
		},
		{
			name:     "Xuyen_Khong",
			input:    "Xuyên không",
			expected: "xuyen khong",
		},
		{
			name:     "Punctuation_Stripped",
			input:    "ngược [thân]!!!",
			expected: "nguoc than",
		},
		{
			name:     "Dash_Becomes_Space",
			input:    "không có NTR – NP",
			expected: "khong co ntr np",
		},
		{
			name:     "Plus_Kept",
			input:    "18+",
			expected: "18+",
		},
		{
			name:     "Whitespace_Collapsed",
			input:    "  sủng    văn  ",
			expected: "sung van",
		},
		{
			name:     "Empty",
			input:    "",
			expected: "",
		},
		{
			name:     "Only_Punctuation",
			input:    "--- !!! ***",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.input)
			if got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestNormalize_Idempotent checks Normalize(Normalize(x)) == Normalize(x)
func TestNormalize_Idempotent(t *testing.T) {
	n := NewTagTextNormalizer()

	inputs := []string{
		"Đam mỹ",
		"Ngược thân!!!",
		"HE - Happy Ending",
		"không có NTR – NP",
		"18+",
		"Cổ trang / Cung đấu",
		"xuyên  không    trọng sinh",
		"",
	}

	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first=%q second=%q", input, once, twice)
		}
	}
}

// TestNormalize_DiacriticsInvariance: dạng có dấu và không dấu phải cho
// cùng một output
func TestNormalize_DiacriticsInvariance(t *testing.T) {
	n := NewTagTextNormalizer()

	pairs := [][2]string{
		{"Đam mỹ", "dam my"},
		{"Ngược", "nguoc"},
		{"Sủng", "sung"},
		{"Bách hợp", "bach hop"},
		{"Hệ thống", "he thong"},
	}

	for _, pair := range pairs {
		withDiacritics := n.Normalize(pair[0])
		withoutDiacritics := n.Normalize(pair[1])
		if withDiacritics != withoutDiacritics {
			t.Errorf("Diacritics variance: Normalize(%q)=%q != Normalize(%q)=%q",
				pair[0], withDiacritics, pair[1], withoutDiacritics)
		}
	}
}

func TestNormalizeBatch(t *testing.T) {
	n := NewTagTextNormalizer()

	got := n.NormalizeBatch([]string{"Đam mỹ", "HE", ""})
	want := []string{"dam my", "he", ""}

	if len(got) != len(want) {
		t.Fatalf("NormalizeBatch length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeBatch[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokens(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		minLen   int
		expected []string
	}{
		{
			name:     "Basic_Split",
			input:    "nguoc than he",
			minLen:   2,
			expected: []string{"nguoc", "than", "he"},
		},
		{
			name:     "Short_Tokens_Dropped",
			input:    "a bc def",
			minLen:   2,
			expected: []string{"bc", "def"},
		},
		{
			name:     "Comma_Boundary",
			input:    "ntr,np",
			minLen:   2,
			expected: []string{"ntr", "np"},
		},
		{
			name:     "Empty",
			input:    "",
			minLen:   2,
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokens(tc.input, tc.minLen)
			if len(got) != len(tc.expected) {
				t.Fatalf("Tokens(%q, %d) = %v, want %v", tc.input, tc.minLen, got, tc.expected)
			}
			for i := range tc.expected {
				if got[i] != tc.expected[i] {
					t.Errorf("Tokens(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.expected[i])
				}
			}
		})
	}
}

func TestContainsWholeToken(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		key      string
		expected bool
	}{
		{"Exact", "np", "np", true},
		{"At_Start", "np 3p", "np", true},
		{"At_End", "khong co np", "np", true},
		{"Middle", "khong co np dau", "np", true},
		{"Inside_Word", "napoleon", "np", false},
		{"Prefix_Of_Word", "npc game", "np", false},
		{"Suffix_Of_Word", "canp", "np", false},
		{"Comma_Boundary", "ntr,np", "np", true},
		{"Multi_Word_Key", "co ngoai tinh nhe", "ngoai tinh", true},
		{"Not_Present", "sung van", "np", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsWholeToken(tc.text, tc.key); got != tc.expected {
				t.Errorf("ContainsWholeToken(%q, %q) = %v, want %v", tc.text, tc.key, got, tc.expected)
			}
		})
	}
}

package vectorstore

import (
	"testing"
	"time"
)

func TestFilter_Validate(t *testing.T) {
	valid := Filter{
		"name":  "go",
		"year":  2024,
		"score": 0.8,
		"flag":  true,
		"since": time.Now(),
		"rank":  Between(1, 10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate failed for supported shapes: %v", err)
	}

	for name, f := range map[string]Filter{
		"slice value": {"tags": []string{"a"}},
		"map value":   {"nested": map[string]any{"x": 1}},
		"nil value":   {"empty": nil},
	} {
		if err := f.Validate(); err == nil {
			t.Errorf("%s: Validate accepted unsupported shape", name)
		}
	}
}

func TestFilter_Matches(t *testing.T) {
	meta := map[string]any{"lang": "go", "year": 2024, "score": 0.5}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"equality hit", Filter{"lang": "go"}, true},
		{"equality miss", Filter{"lang": "rust"}, false},
		{"missing key", Filter{"absent": "x"}, false},
		{"conjunction", Filter{"lang": "go", "year": 2024}, true},
		{"conjunction partial", Filter{"lang": "go", "year": 1999}, false},
		{"range hit", Filter{"year": Between(2020, 2026)}, true},
		{"range miss", Filter{"year": Gt(2024)}, false},
		{"range inclusive", Filter{"year": Gte(2024)}, true},
		{"range upper", Filter{"score": Lte(0.5)}, true},
		{"range on non-numeric", Filter{"lang": Gte(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(meta); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilter_NumericEqualityAcrossTypes(t *testing.T) {
	// JSON round trips turn ints into float64; equality must survive that.
	if !(Filter{"year": 2024}).Matches(map[string]any{"year": float64(2024)}) {
		t.Error("int filter did not match float64 metadata")
	}
	if !(Filter{"year": float64(2024)}).Matches(map[string]any{"year": 2024}) {
		t.Error("float64 filter did not match int metadata")
	}
}

package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeStringMap(t *testing.T) {
	t.Run("trims keys and values", func(t *testing.T) {
		input := map[string]string{
			" name ":  " Game Spirit ",
			"city":    " Lyon ",
			"empty":   " ",
			" ":       "ignored",
			"":        "ignore",
		}

		expected := map[string]string{
			"name":  "Game Spirit",
			"city":  "Lyon",
			"empty": "",
		}

		actual := NormalizeStringMap(input)
		if !reflect.DeepEqual(actual, expected) {
			t.Fatalf("expected %#v got %#v", expected, actual)
		}
	})

	t.Run("returns nil for nil or empty input", func(t *testing.T) {
		if NormalizeStringMap(nil) != nil {
			t.Fatalf("expected nil for nil input")
		}
		if NormalizeStringMap(map[string]string{}) != nil {
			t.Fatalf("expected nil for empty map")
		}
	})
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "plain", raw: "Arcade,Figurines", want: []string{"Arcade", "Figurines"}},
		{name: "ragged spacing and empties", raw: "A, B ,,C", want: []string{"A", "B", "C"}},
		{name: "empty source", raw: "", want: []string{}},
		{name: "only separators", raw: " , ,", want: []string{}},
		{name: "order preserved", raw: "Rétrogaming, Arcade", want: []string{"Rétrogaming", "Arcade"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitCSV(tc.raw)
			if got == nil {
				t.Fatalf("SplitCSV(%q) returned nil; want a non-nil slice", tc.raw)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitCSV(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEqualsTrue(t *testing.T) {
	if !EqualsTrue("true") || !EqualsTrue("TRUE") || !EqualsTrue(" True ") {
		t.Error("expected case-insensitive true match")
	}
	if EqualsTrue("") || EqualsTrue("yes") || EqualsTrue("1") || EqualsTrue("truee") {
		t.Error("expected non-true values to be false")
	}
}

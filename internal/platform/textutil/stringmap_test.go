package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeStringMap(t *testing.T) {
	t.Run("trims keys and values", func(t *testing.T) {
		input := map[string]string{
			" doos ":      " Box ",
			"sleutelhoes": " Key Case ",
			"empty":       " ",
			" ":           "ignored",
		}

		expected := map[string]string{
			"doos":        "Box",
			"sleutelhoes": "Key Case",
			"empty":       "",
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
		if NormalizeStringMap(map[string]string{"  ": "x"}) != nil {
			t.Fatalf("expected nil when every key is blank")
		}
	})
}

func TestCollapseWhitespace(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"  Lid \n\t height  ":    "Lid height",
		"already clean":          "already clean",
		" non breaking": "non breaking",
	}
	for input, want := range cases {
		if got := CollapseWhitespace(input); got != want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", input, got, want)
		}
	}
}

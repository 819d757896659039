package relation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewFieldSet(t *testing.T) {
	fs := NewFieldSet([]string{"userId", " locationId ", "", "userId", "parentId"})

	if diff := cmp.Diff([]string{"userId", "locationId", "parentId"}, fs.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if !fs.Has("locationId") {
		t.Error("expected trimmed name to be present")
	}
	// только точное совпадение
	for _, name := range []string{"user", "userIdx", "UserId", ""} {
		if fs.Has(name) {
			t.Errorf("Has(%q) = true, want false", name)
		}
	}
}

func TestFieldSetZeroValue(t *testing.T) {
	var fs FieldSet
	if fs.Len() != 0 || fs.Has("userId") {
		t.Error("zero FieldSet must be empty")
	}
}

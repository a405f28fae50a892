package textkeep

import (
	"reflect"
	"testing"
)

func TestNormalizeFields(t *testing.T) {
	got, err := NormalizeFields([]string{"title", "id", "title", "__payload", "body"})
	if err != nil {
		t.Fatalf("NormalizeFields: %v", err)
	}
	want := []string{"title", "body"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeFieldsRejectsBadNames(t *testing.T) {
	for _, bad := range []string{"with space", "dash-ed", "1leading", `quo"te`} {
		if _, err := NormalizeFields([]string{bad}); !IsKind(err, ErrSchema) {
			t.Fatalf("field %q: want schema error, got %v", bad, err)
		}
	}
}

func TestNormalizeFieldsRequiresOneField(t *testing.T) {
	if _, err := NormalizeFields([]string{"id", "__payload"}); !IsKind(err, ErrSchema) {
		t.Fatalf("want schema error, got %v", err)
	}
	if _, err := NormalizeFields(nil); !IsKind(err, ErrSchema) {
		t.Fatalf("want schema error, got %v", err)
	}
}

func TestSchemaIndexed(t *testing.T) {
	s := Schema{Fields: []string{"title", "body", "id", "__payload"}}
	if got, want := s.Indexed(), []string{"title", "body"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !s.Has("id") || s.Has("missing") {
		t.Fatal("Has misreports membership")
	}
	if s.Empty() || !(Schema{}).Empty() {
		t.Fatal("Empty misreports")
	}
}

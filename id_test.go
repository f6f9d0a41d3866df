package txprobe

import "testing"

func TestUUIDv7GeneratorFormat(t *testing.T) {
	gen := UUIDv7Generator{}
	id, err := gen.New()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(id) != 36 {
		t.Fatalf("expected canonical uuid length, got %d", len(id))
	}
	if id[14] != '7' {
		t.Fatalf("expected uuid version 7, got %c", id[14])
	}
}

func TestUUIDv7GeneratorUnique(t *testing.T) {
	gen := UUIDv7Generator{}
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := gen.New()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate correlation id %s", id)
		}
		seen[id] = struct{}{}
	}
}

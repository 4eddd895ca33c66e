package catalog

import "testing"

func TestListingIsACopy(t *testing.T) {
	first := Listing()
	if len(first) == 0 {
		t.Fatal("expected a non-empty listing")
	}

	first[0].Name = "mutated"

	second := Listing()
	if second[0].Name == "mutated" {
		t.Fatal("mutating a returned listing leaked into the catalog")
	}
}

func TestListingEntriesComplete(t *testing.T) {
	seen := map[int]bool{}
	for _, p := range Listing() {
		if p.ID == 0 || p.Name == "" || p.Description == "" || p.Image == "" {
			t.Fatalf("incomplete entry: %+v", p)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate id %d", p.ID)
		}
		seen[p.ID] = true
	}
}

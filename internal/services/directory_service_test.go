package services

import (
	"testing"
)

func filterFixture() []ShopRecord {
	return []ShopRecord{
		{ID: 1, Name: "Game Spirit", City: "Lyon", Tags: []string{"Arcade", "Rétrogaming"}},
		{ID: 2, Name: "Pixel Museum", City: "Paris", Tags: []string{"Figurines"}},
		{ID: 3, Name: "Rétro Passion", City: "Bordeaux", Tags: []string{"Import Japon"}},
		{ID: 4, Name: "Next Level", City: "Lyon", Tags: []string{"Next Gen"}},
	}
}

func filteredIDs(records []ShopRecord) []int {
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestFilterShops(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "empty query returns all", query: "", want: []int{1, 2, 3, 4}},
		{name: "whitespace query returns all", query: "   ", want: []int{1, 2, 3, 4}},
		{name: "name substring", query: "pixel", want: []int{2}},
		{name: "city match", query: "lyon", want: []int{1, 4}},
		{name: "tag match", query: "figurines", want: []int{2}},
		{name: "case insensitive", query: "GAME", want: []int{1}},
		{name: "accent insensitive query", query: "retro", want: []int{1, 3}},
		{name: "accented query matches plain text", query: "rétro", want: []int{1, 3}},
		{name: "no match", query: "zzz", want: []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := filteredIDs(FilterShops(filterFixture(), tc.query))
			if len(got) != len(tc.want) {
				t.Fatalf("query %q: got ids %v, want %v", tc.query, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("query %q: got ids %v, want %v", tc.query, got, tc.want)
				}
			}
		})
	}
}

func TestFilterShopsPreservesOrder(t *testing.T) {
	records := []ShopRecord{
		{ID: 7, Name: "Retro Cave"},
		{ID: 2, Name: "Retro Corner"},
		{ID: 5, Name: "Retro Base"},
	}
	got := filteredIDs(FilterShops(records, "retro"))
	want := []int{7, 2, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected feed order preserved, got %v", got)
		}
	}
}

func TestDirectoryReplaceAndSnapshot(t *testing.T) {
	dir := NewDirectoryService()
	if dir.Loaded() {
		t.Fatal("expected directory to start unloaded")
	}

	first := dir.Snapshot()
	if first.Generation != 0 || len(first.Records) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", first)
	}

	dir.Replace(filterFixture())
	if !dir.Loaded() {
		t.Fatal("expected directory to be loaded after replace")
	}
	snap := dir.Snapshot()
	if snap.Generation != 1 {
		t.Errorf("expected generation 1, got %d", snap.Generation)
	}
	if len(snap.Records) != 4 {
		t.Errorf("expected 4 records, got %d", len(snap.Records))
	}

	rec, ok := dir.Get(3)
	if !ok {
		t.Fatal("expected record 3 to resolve")
	}
	if rec.Name != "Rétro Passion" {
		t.Errorf("unexpected record: %+v", rec)
	}

	dir.Replace(filterFixture()[:1])
	snap = dir.Snapshot()
	if snap.Generation != 2 {
		t.Errorf("expected generation 2 after second replace, got %d", snap.Generation)
	}
	if _, ok := dir.Get(3); ok {
		t.Error("expected record 3 to be gone after replacement")
	}
}

func TestDirectorySubscribe(t *testing.T) {
	dir := NewDirectoryService()

	var seen []uint64
	unsubscribe := dir.Subscribe(func(snap DirectorySnapshot) {
		seen = append(seen, snap.Generation)
	})

	dir.Replace(filterFixture())
	dir.Replace(filterFixture())
	unsubscribe()
	dir.Replace(filterFixture())

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if seen[0] != 1 || seen[1] != 2 {
		t.Errorf("unexpected generations: %v", seen)
	}
}

func TestDirectoryReplaceCopiesInput(t *testing.T) {
	dir := NewDirectoryService()
	input := filterFixture()
	dir.Replace(input)

	input[0].Name = "mutated"
	if rec, _ := dir.Get(1); rec.Name == "mutated" {
		t.Error("expected replace to copy records instead of aliasing the input")
	}
}

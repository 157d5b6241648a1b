package offices

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := NewIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestCatalog(t *testing.T) {
	catalog, err := Catalog()
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog) == 0 {
		t.Fatal("catalog should not be empty")
	}
	seen := make(map[string]bool)
	for _, o := range catalog {
		if o.ID == "" || o.Name == "" || o.Region == "" {
			t.Errorf("incomplete office entry: %+v", o)
		}
		if seen[o.ID] {
			t.Errorf("duplicate office id %s", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestIndex_SearchByCity(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	results, err := ix.Search(ctx, "london", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected hits for london")
	}
	for _, r := range results {
		if r.Office.City != "London" {
			t.Errorf("unexpected hit %s in %s", r.Office.ID, r.Office.City)
		}
	}
}

func TestIndex_RegionFilter(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	results, err := ix.Search(ctx, "visa application centre", "uk", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected hits for uk centres")
	}
	for _, r := range results {
		if r.Office.Region != "uk" {
			t.Errorf("region filter leaked: %s is %s", r.Office.ID, r.Office.Region)
		}
	}
}

func TestIndex_EmptyQueryListsRegion(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	results, err := ix.Search(ctx, "", "schengen", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected schengen offices")
	}
	for _, r := range results {
		if r.Office.Region != "schengen" {
			t.Errorf("got region %s", r.Office.Region)
		}
	}
}

func TestIndex_FuzzyFallback(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	// One typo; the exact query misses, the fuzzy retry should not.
	results, err := ix.Search(ctx, "lonndon", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected fuzzy hits for misspelled city")
	}
}

func TestIndex_LimitRespected(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	results, err := ix.Search(ctx, "", "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestIndex_PersistentPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offices.bleve")
	ix, err := NewIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if ix.Count() == 0 {
		t.Error("expected indexed catalog")
	}
	if err := ix.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen the existing index directory.
	ix2, err := NewIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ix2.Close()
	results, err := ix2.Search(context.Background(), "sheffield", "", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("expected hits from reopened index")
	}
}

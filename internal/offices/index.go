package offices

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// Index is a Bleve-backed search index over the office catalog.
type Index struct {
	index   bleve.Index
	byID    map[string]Office
	catalog []Office
}

// SearchResult is one office hit with its relevance score.
type SearchResult struct {
	Office Office  `json:"office"`
	Score  float64 `json:"score"`
}

func indexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	officeMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase and tokenize without stemming, so city and
	// office names match as typed.
	textField.Analyzer = standard.Name
	officeMapping.AddFieldMappingsAt("name", textField)
	officeMapping.AddFieldMappingsAt("country", textField)
	officeMapping.AddFieldMappingsAt("city", textField)
	officeMapping.AddFieldMappingsAt("notes", textField)

	keywordField := bleve.NewKeywordFieldMapping()
	officeMapping.AddFieldMappingsAt("id", keywordField)
	officeMapping.AddFieldMappingsAt("region", keywordField)
	officeMapping.AddFieldMappingsAt("visa_types", keywordField)

	im.AddDocumentMapping("office", officeMapping)
	im.DefaultType = "office"
	im.DefaultMapping = officeMapping
	return im
}

// NewIndex builds an index over the bundled catalog. With a non-empty path
// the index persists on disk and is reused across runs; with an empty path
// it lives in memory.
func NewIndex(path string) (*Index, error) {
	catalog, err := Catalog()
	if err != nil {
		return nil, err
	}

	var idx bleve.Index
	fresh := true
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping())
	} else if _, statErr := os.Stat(path); statErr == nil {
		idx, err = bleve.Open(path)
		fresh = false
	} else {
		idx, err = bleve.New(path, indexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open office index: %w", err)
	}

	byID := make(map[string]Office, len(catalog))
	for _, o := range catalog {
		byID[o.ID] = o
	}
	if fresh {
		batch := idx.NewBatch()
		for _, o := range catalog {
			if err := batch.Index(o.ID, o); err != nil {
				_ = idx.Close()
				return nil, fmt.Errorf("index office %s: %w", o.ID, err)
			}
		}
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("index office catalog: %w", err)
		}
	}
	return &Index{index: idx, byID: byID, catalog: catalog}, nil
}

// Search finds offices matching query, optionally restricted to a region.
// An empty query lists offices for the region (or the whole catalog). When
// an exact match query yields nothing, a fuzzy retry absorbs small typos.
func (ix *Index) Search(ctx context.Context, query, region string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	query = strings.TrimSpace(query)
	region = strings.ToLower(strings.TrimSpace(region))

	if query == "" {
		return ix.listByRegion(region, limit), nil
	}

	results, err := ix.search(buildQuery(query, region, false), limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		results, err = ix.search(buildQuery(query, region, true), limit)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func buildQuery(query, region string, fuzzy bool) blevequery.Query {
	var base blevequery.Query
	if fuzzy {
		terms := strings.Fields(strings.ToLower(query))
		queries := make([]blevequery.Query, 0, len(terms))
		for _, term := range terms {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(2)
			queries = append(queries, fq)
		}
		base = bleve.NewDisjunctionQuery(queries...)
	} else {
		base = bleve.NewMatchQuery(query)
	}
	if region == "" {
		return base
	}
	rq := bleve.NewTermQuery(region)
	rq.SetField("region")
	return bleve.NewConjunctionQuery(base, rq)
}

func (ix *Index) search(q blevequery.Query, limit int) ([]SearchResult, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	res, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("office search failed: %w", err)
	}
	out := make([]SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		office, ok := ix.byID[hit.ID]
		if !ok {
			continue
		}
		out = append(out, SearchResult{Office: office, Score: hit.Score})
	}
	return out, nil
}

func (ix *Index) listByRegion(region string, limit int) []SearchResult {
	out := make([]SearchResult, 0, limit)
	for _, o := range ix.catalog {
		if region != "" && o.Region != region {
			continue
		}
		out = append(out, SearchResult{Office: o})
		if len(out) == limit {
			break
		}
	}
	return out
}

// Count returns the number of offices in the catalog.
func (ix *Index) Count() int {
	return len(ix.catalog)
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

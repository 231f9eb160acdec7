package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/docstudio/internal/models"
)

var textFields = []string{"filename", "summary", "text"}

// HistoryIndex is a Bleve index of saved summary records keyed by record id.
type HistoryIndex struct {
	index bleve.Index
}

// NewHistoryIndex creates or opens a Bleve index at path. An empty path keeps the index in memory.
func NewHistoryIndex(path string) (*HistoryIndex, error) {
	im := newMapping()
	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &HistoryIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &HistoryIndex{index: index}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &HistoryIndex{index: index}, nil
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Standard analyzer lowercases and tokenizes without stemming, so terms stay
	// usable as spelling suggestions.
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, f := range textFields {
		docMapping.AddFieldMappingsAt(f, text)
	}
	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.Store = true
	docMapping.AddFieldMappingsAt("model", stored)
	docMapping.AddFieldMappingsAt("date", stored)

	im.AddDocumentMapping("summary", docMapping)
	im.DefaultType = "summary"
	im.DefaultMapping = docMapping
	return im
}

func docID(id int64) string { return strconv.FormatInt(id, 10) }

// Index adds or replaces rec. Records without an id are rejected.
func (h *HistoryIndex) Index(rec *models.SummaryRecord) error {
	if rec.ID == 0 {
		return fmt.Errorf("cannot index summary %q without an id", rec.Filename)
	}
	return h.index.Index(docID(rec.ID), newHistoryDoc(rec))
}

// Delete removes the given record ids.
func (h *HistoryIndex) Delete(ids []int64) error {
	batch := h.index.NewBatch()
	for _, id := range ids {
		batch.Delete(docID(id))
	}
	return h.index.Batch(batch)
}

// Rebuild replaces the index contents with recs.
func (h *HistoryIndex) Rebuild(ctx context.Context, recs []*models.SummaryRecord) error {
	existing, err := h.allIDs()
	if err != nil {
		return err
	}
	batch := h.index.NewBatch()
	for _, id := range existing {
		batch.Delete(id)
	}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rec.ID == 0 {
			continue
		}
		if err := batch.Index(docID(rec.ID), newHistoryDoc(rec)); err != nil {
			return fmt.Errorf("failed to batch summary %d: %w", rec.ID, err)
		}
	}
	if err := h.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return nil
}

func (h *HistoryIndex) allIDs() ([]string, error) {
	n, err := h.index.DocCount()
	if err != nil {
		return nil, err
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(n)
	res, err := h.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed summaries: %w", err)
	}
	ids := make([]string, len(res.Hits))
	for i, hit := range res.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Search returns up to limit records ranked by relevance to query.
func (h *HistoryIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	boost := 1.0
	fuzzy, fuzziness := false, 1
	if opts != nil {
		if opts.FilenameBoost > 1 {
			boost = opts.FilenameBoost
		}
		fuzzy = opts.Fuzzy
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	fieldQueries := make([]blevequery.Query, 0, len(textFields))
	for _, f := range textFields {
		q := fieldQuery(query, f, fuzzy, fuzziness)
		if f == "filename" {
			q.(blevequery.BoostableQuery).SetBoost(boost)
		}
		fieldQueries = append(fieldQueries, q)
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(fieldQueries...))
	req.Size = limit
	req.Fields = []string{"filename"}
	res, err := h.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		name, _ := hit.Fields["filename"].(string)
		hits = append(hits, Hit{ID: id, Filename: name, Score: hit.Score})
	}
	return hits, nil
}

// fieldQuery matches query in one field, with each term fuzzy when requested.
func fieldQuery(query, field string, fuzzy bool, fuzziness int) blevequery.Query {
	if !fuzzy {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		return mq
	}
	terms := tokenizeQuery(query)
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// DocCount returns the number of indexed records.
func (h *HistoryIndex) DocCount() (uint64, error) {
	return h.index.DocCount()
}

// Terms returns every indexed term of the text fields with its document frequency.
func (h *HistoryIndex) Terms() (map[string]int, error) {
	terms := map[string]int{}
	for _, f := range textFields {
		dict, err := h.index.FieldDict(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", f, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if int(entry.Count) > terms[entry.Term] {
				terms[entry.Term] = int(entry.Count)
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

// Close closes the index.
func (h *HistoryIndex) Close() error {
	return h.index.Close()
}

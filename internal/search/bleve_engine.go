package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/pders01/reel/internal/storage"
)

type BleveEngine struct {
	idx bleve.Index
}

// NewBleveEngine opens or creates the index at indexPath. An empty path
// keeps the index in memory.
func NewBleveEngine(indexPath string) (*BleveEngine, error) {
	if indexPath == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating in-memory index: %w", err)
		}
		return &BleveEngine{idx: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index at %s: %w", indexPath, err)
		}
	}
	return &BleveEngine{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	username := bleve.NewTextFieldMapping()
	username.Analyzer = standard.Name
	username.Store = true
	username.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = true

	topic := bleve.NewTextFieldMapping()
	topic.Analyzer = standard.Name
	topic.Store = true

	dm.AddFieldMappingsAt("username", username)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("topic", topic)

	im.DefaultMapping = dm
	return im
}

// Index adds videos in one batch. Re-indexing a video replaces it.
func (b *BleveEngine) Index(videos []*storage.Video) error {
	batch := b.idx.NewBatch()
	for _, v := range videos {
		if err := batch.Index(docIDForVideo(v.ID), map[string]any{
			"username":    v.Username,
			"description": v.Description,
			"topic":       v.Topic,
		}); err != nil {
			return fmt.Errorf("indexing video %d: %w", v.ID, err)
		}
	}
	return b.idx.Batch(batch)
}

var fieldBoosts = []struct {
	field string
	match float64
	pref  float64
}{
	{"username", 3.0, 2.5},
	{"description", 2.0, 1.8},
	{"topic", 1.5, 1.2},
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, fb := range fieldBoosts {
			qm := bleve.NewMatchQuery(tok)
			qm.SetField(fb.field)
			qm.SetBoost(fb.match)
			qs = append(qs, qm)

			qp := bleve.NewPrefixQuery(tok)
			qp.SetField(fb.field)
			qp.SetBoost(fb.pref)
			qs = append(qs, qp)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"username", "description", "topic"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(strings.TrimPrefix(h.ID, "video:"), 10, 64)
		if err != nil {
			continue
		}
		r := &Result{VideoID: id, Score: h.Score}
		if s, ok := h.Fields["username"].(string); ok {
			r.Username = s
		}
		if s, ok := h.Fields["description"].(string); ok {
			r.Description = s
		}
		if s, ok := h.Fields["topic"].(string); ok {
			r.Topic = s
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForVideo(id int64) string { return "video:" + strconv.FormatInt(id, 10) }

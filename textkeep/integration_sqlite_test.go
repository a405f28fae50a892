package textkeep_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/textkeep/textkeep/textkeep"
	"github.com/textkeep/textkeep/textkeep/storage/sqlite"
	_ "modernc.org/sqlite"
)

func newIndex(t *testing.T, fields ...string) *textkeep.Index {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	ix, err := textkeep.Create(context.Background(), sqlite.New(dbPath), fields, textkeep.DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func mustAdd(t *testing.T, ix *textkeep.Index, id string, doc textkeep.Document) {
	t.Helper()
	if err := ix.Add(context.Background(), id, doc, true); err != nil {
		t.Fatalf("Add %s: %v", id, err)
	}
}

func searchOne(t *testing.T, ix *textkeep.Index, query string, opts textkeep.SearchOptions) textkeep.Document {
	t.Helper()
	docs, err := ix.Search(context.Background(), query, opts)
	if err != nil {
		t.Fatalf("Search %q: %v", query, err)
	}
	if len(docs) != 1 {
		t.Fatalf("Search %q: got %d docs, want 1", query, len(docs))
	}
	return docs[0]
}

func TestRoundTripWithPayload(t *testing.T) {
	ix := newIndex(t, "title", "body")

	mustAdd(t, ix, "d1", textkeep.Document{
		"title": "release notes",
		"body":  "bug fixes and assorted improvements",
		"tags":  []any{"go", "fts"},
		"meta":  map[string]any{"author": "nb", "rev": float64(3)},
	})

	doc := searchOne(t, ix, "", textkeep.SearchOptions{
		Filter:  `id = 'd1'`,
		Payload: true,
	})
	if doc["id"] != "d1" {
		t.Fatalf("id = %v", doc["id"])
	}
	if doc["title"] != "release notes" {
		t.Fatalf("title = %v", doc["title"])
	}
	tags, ok := doc["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "go" || tags[1] != "fts" {
		t.Fatalf("tags not preserved: %v", doc["tags"])
	}
	meta, ok := doc["meta"].(map[string]any)
	if !ok || meta["author"] != "nb" || meta["rev"] != float64(3) {
		t.Fatalf("meta not preserved: %v", doc["meta"])
	}

	// without payload only projected columns come back, each resolved
	// from the payload rather than the flattened index text
	doc = searchOne(t, ix, "", textkeep.SearchOptions{Filter: `id = 'd1'`})
	if _, present := doc["tags"]; present {
		t.Fatalf("non-column key leaked without payload: %v", doc)
	}
	if doc["body"] != "bug fixes and assorted improvements" {
		t.Fatalf("body = %v", doc["body"])
	}
}

func TestNestedValuesAreSearchable(t *testing.T) {
	ix := newIndex(t, "title", "notes")
	mustAdd(t, ix, "n1", textkeep.Document{
		"title": "short",
		"notes": map[string]any{
			"summary": "the quarterly report covers revenue",
			"code":    "abc123", // under the leaf threshold, not indexed
		},
	})

	doc := searchOne(t, ix, "notes: quarterly", textkeep.SearchOptions{Payload: true})
	notes, ok := doc["notes"].(map[string]any)
	if !ok || notes["code"] != "abc123" {
		t.Fatalf("nested payload not reconstructed: %v", doc["notes"])
	}

	docs, err := ix.Search(context.Background(), "notes: abc123", textkeep.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("short leaf should not be indexed, got %d docs", len(docs))
	}
}

func TestAddIsUpsert(t *testing.T) {
	ix := newIndex(t, "title")
	ctx := context.Background()

	mustAdd(t, ix, "u1", textkeep.Document{"title": "first"})
	mustAdd(t, ix, "u1", textkeep.Document{"title": "second"})

	n, err := ix.Count(ctx, "", "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	doc := searchOne(t, ix, "", textkeep.SearchOptions{Filter: `id = 'u1'`})
	if doc["title"] != "second" {
		t.Fatalf("title = %v, want second", doc["title"])
	}
}

func TestUpdateReplacesWholeDocument(t *testing.T) {
	ix := newIndex(t, "title", "body")
	ctx := context.Background()

	mustAdd(t, ix, "r1", textkeep.Document{"title": "old", "body": "original body text"})
	if err := ix.Update(ctx, "r1", textkeep.Document{"title": "new"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc := searchOne(t, ix, "", textkeep.SearchOptions{Filter: `id = 'r1'`, Payload: true})
	if doc["title"] != "new" {
		t.Fatalf("title = %v", doc["title"])
	}
	if doc["body"] != nil {
		t.Fatalf("body survived full replace: %v", doc["body"])
	}

	// the old body is gone from the match index too
	docs, err := ix.Search(ctx, "body: original", textkeep.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("stale index text still matches: %d docs", len(docs))
	}
}

func TestQualifiedQueryTargetsOneField(t *testing.T) {
	ix := newIndex(t, "title", "body")
	ctx := context.Background()

	mustAdd(t, ix, "a", textkeep.Document{"title": "cats everywhere", "body": "nothing here"})
	mustAdd(t, ix, "b", textkeep.Document{"title": "plain heading", "body": "cats in the body"})

	doc := searchOne(t, ix, "title: cats", textkeep.SearchOptions{})
	if doc["id"] != "a" {
		t.Fatalf("qualified match hit %v", doc["id"])
	}

	docs, err := ix.Search(ctx, "cats", textkeep.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("free text should span fields, got %d docs", len(docs))
	}
}

func TestNearProximity(t *testing.T) {
	ix := newIndex(t, "body")
	ctx := context.Background()

	mustAdd(t, ix, "close", textkeep.Document{"body": "the quick brown fox"})
	mustAdd(t, ix, "far", textkeep.Document{"body": "quick start guide with many intervening words before the brown color section"})

	docs, err := ix.Search(ctx, "quick brown", textkeep.SearchOptions{Near: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 || docs[0]["id"] != "close" {
		t.Fatalf("near search got %d docs", len(docs))
	}
}

func TestBatchIsAtomic(t *testing.T) {
	ix := newIndex(t, "title")
	ctx := context.Background()

	err := ix.AddBatch(ctx, []textkeep.Document{
		{"id": "b1", "title": "one"},
		{"title": "no id here"},
		{"id": "b3", "title": "three"},
	})
	if !textkeep.IsKind(err, textkeep.ErrMissingID) {
		t.Fatalf("want missing-id error, got %v", err)
	}

	n, err := ix.Count(ctx, "", "")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("partial batch persisted: count = %d", n)
	}

	if err := ix.AddBatch(ctx, []textkeep.Document{
		{"id": "b1", "title": "one"},
		{"id": "b3", "title": "three"},
	}); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if n, _ := ix.Count(ctx, "", ""); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestBatchExecute(t *testing.T) {
	ix := newIndex(t, "title")
	ctx := context.Background()

	mustAdd(t, ix, "gone", textkeep.Document{"title": "to be removed"})

	var b textkeep.Batch
	b.Add("x", textkeep.Document{"title": "batched one"})
	b.Add("y", textkeep.Document{"title": "batched two"})
	b.Remove("gone")
	n, err := b.Execute(ctx, ix)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n != 3 {
		t.Fatalf("applied = %d, want 3", n)
	}

	total, _ := ix.Count(ctx, "", "")
	if total != 2 {
		t.Fatalf("count = %d, want 2", total)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ix := newIndex(t, "title")
	ctx := context.Background()

	mustAdd(t, ix, "d", textkeep.Document{"title": "delete me"})

	removed, err := ix.Remove(ctx, "d")
	if err != nil || !removed {
		t.Fatalf("first remove: removed=%v err=%v", removed, err)
	}
	removed, err = ix.Remove(ctx, "d")
	if err != nil || removed {
		t.Fatalf("second remove: removed=%v err=%v", removed, err)
	}
}

func TestFacetOrdering(t *testing.T) {
	ix := newIndex(t, "category", "title")
	ctx := context.Background()

	mustAdd(t, ix, "1", textkeep.Document{"category": "alpha", "title": "first"})
	mustAdd(t, ix, "2", textkeep.Document{"category": "alpha", "title": "second"})
	mustAdd(t, ix, "3", textkeep.Document{"category": "beta", "title": "third"})

	groups, err := ix.FacetSearch(ctx, "", "category", textkeep.FacetOptions{})
	if err != nil {
		t.Fatalf("FacetSearch: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Value != "alpha" || groups[0].Count != 2 {
		t.Fatalf("first group = %+v", groups[0])
	}
	if groups[1].Value != "beta" || groups[1].Count != 1 {
		t.Fatalf("second group = %+v", groups[1])
	}

	// facet respects the match expression
	groups, err = ix.FacetSearch(ctx, "title: third", "category", textkeep.FacetOptions{})
	if err != nil {
		t.Fatalf("FacetSearch: %v", err)
	}
	if len(groups) != 1 || groups[0].Value != "beta" {
		t.Fatalf("filtered groups = %+v", groups)
	}
}

func TestPagination(t *testing.T) {
	ix := newIndex(t, "title")
	ctx := context.Background()

	docs := make([]textkeep.Document, 0, 5)
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		docs = append(docs, textkeep.Document{"id": id, "title": "page content " + id})
	}
	if err := ix.AddBatch(ctx, docs); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}

	page, err := ix.Search(ctx, "", textkeep.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}

	rest, err := ix.Search(ctx, "", textkeep.SearchOptions{Limit: 10, Offset: 4})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("offset page size = %d, want 1", len(rest))
	}
}

func TestEmptyResult(t *testing.T) {
	ix := newIndex(t, "title")

	docs, err := ix.Search(context.Background(), "zzz_nonexistent", textkeep.SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", docs)
	}
}

func TestProjection(t *testing.T) {
	ix := newIndex(t, "title", "body")

	mustAdd(t, ix, "pr", textkeep.Document{"title": "projected", "body": "hidden"})

	doc := searchOne(t, ix, "", textkeep.SearchOptions{
		Fields: []string{"id", "title"},
		Filter: `id = 'pr'`,
	})
	if doc["title"] != "projected" {
		t.Fatalf("title = %v", doc["title"])
	}
	if _, present := doc["body"]; present {
		t.Fatalf("unprojected column leaked: %v", doc)
	}
}

func TestInvalidProjectionField(t *testing.T) {
	ix := newIndex(t, "title")

	_, err := ix.Search(context.Background(), "", textkeep.SearchOptions{
		Fields: []string{"bad name"},
	})
	if !textkeep.IsKind(err, textkeep.ErrQuery) {
		t.Fatalf("want query error, got %v", err)
	}
}

func TestOpenMissingTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	_, err := textkeep.Open(context.Background(), sqlite.New(dbPath), textkeep.DefaultOptions())
	if !textkeep.IsKind(err, textkeep.ErrSchemaNotFound) {
		t.Fatalf("want schema-not-found, got %v", err)
	}
}

func TestOpenResolvesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "resolve.db")
	ctx := context.Background()

	ix, err := textkeep.Create(ctx, sqlite.New(dbPath), []string{"title", "body"}, textkeep.DefaultOptions())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ix, err = textkeep.Open(ctx, sqlite.New(dbPath), textkeep.DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ix.Close()

	got := ix.Schema().Indexed()
	if len(got) != 2 || got[0] != "title" || got[1] != "body" {
		t.Fatalf("resolved fields = %v", got)
	}
}

func TestFalsyValuesIndexed(t *testing.T) {
	ix := newIndex(t, "count", "flag")

	mustAdd(t, ix, "f", textkeep.Document{"count": float64(0), "flag": false})

	doc := searchOne(t, ix, "count: 0", textkeep.SearchOptions{})
	if doc["id"] != "f" {
		t.Fatalf("zero not indexed: %v", doc)
	}
	doc = searchOne(t, ix, "flag: false", textkeep.SearchOptions{})
	if doc["id"] != "f" {
		t.Fatalf("false not indexed: %v", doc)
	}
}

func TestMissingIDOnAdd(t *testing.T) {
	ix := newIndex(t, "title")

	err := ix.AddBatch(context.Background(), []textkeep.Document{{"title": "anonymous"}})
	if !textkeep.IsKind(err, textkeep.ErrMissingID) {
		t.Fatalf("want missing-id error, got %v", err)
	}
}

package db

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestInitDBCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	// Running the migrations twice must be harmless.
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}

	rows, err := db.Query("PRAGMA table_info(observations)")
	if err != nil {
		t.Fatalf("pragma: %v", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	for _, c := range []string{"source_id", "item_index", "locale", "phrase", "unit", "quantity", "published_at", "approximate", "error_kind"} {
		if !cols[c] {
			t.Errorf("observations is missing column %s, got %v", c, cols)
		}
	}
}

func TestCreateOrGetSource(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id1, err := CreateOrGetSource(db, "website_article", "", "", "example.com", "https://example.com/a", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	id2, err := CreateOrGetSource(db, "website_article", "", "", "example.com", "https://example.com/a", "")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same source id, got %d and %d", id1, id2)
	}
	if _, err := CreateOrGetSource(db, "  ", "", "", "", "", ""); err == nil {
		t.Fatalf("expected error for empty source type")
	}

	s, err := GetSource(db, id1)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if s.URL != "https://example.com/a" || s.SourceType != "website_article" || s.LastProcessedItem != 0 {
		t.Fatalf("unexpected source %+v", s)
	}
}

func TestCreateOrGetSourceConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetSource(db, "website_article", "Title", "Author", "example.com", "https://example.com/c", "")
			if err != nil {
				t.Errorf("create or get source: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sources WHERE url = ?`, "https://example.com/c").Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 source row, got %d", cnt)
	}
}

func TestObservations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	sID, err := CreateOrGetSource(db, "phrase_list", "", "", "", "file:///phrases.tsv", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	published := time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)
	if _, err := InsertObservation(db, Observation{
		SourceID: sID, ItemIndex: 1, Locale: "tr", Phrase: "2 gün önce",
		Unit: "days", Quantity: 2, PublishedAt: published, Approximate: true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := InsertObservation(db, Observation{
		SourceID: sID, ItemIndex: 0, Locale: "en", Phrase: "banana", ErrorKind: ErrorKindNoMatch,
	}); err != nil {
		t.Fatalf("insert failure: %v", err)
	}

	obs, err := GetObservationsBySource(db, sID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if obs[0].ItemIndex != 0 || obs[0].ErrorKind != ErrorKindNoMatch || obs[0].Unit != "" || !obs[0].PublishedAt.IsZero() {
		t.Fatalf("unexpected failed observation %+v", obs[0])
	}
	got := obs[1]
	if got.Unit != "days" || got.Quantity != 2 || !got.Approximate || !got.PublishedAt.Equal(published) {
		t.Fatalf("unexpected observation %+v", got)
	}

	// Re-processing an item replaces it.
	if _, err := InsertObservation(db, Observation{
		SourceID: sID, ItemIndex: 0, Locale: "en", Phrase: "3 days", Unit: "days", Quantity: 3,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	obs, err = GetObservationsBySource(db, sID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(obs) != 2 || obs[0].Quantity != 3 || obs[0].ErrorKind != "" {
		t.Fatalf("expected the item to be replaced, got %+v", obs)
	}
}

func TestInsertObservationValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cases := []Observation{
		{SourceID: 0, Phrase: "x", Unit: "days"},
		{SourceID: 1, ItemIndex: -1, Phrase: "x", Unit: "days"},
		{SourceID: 1, Phrase: "x"},
		{SourceID: 1, Phrase: "x", Unit: "days", ErrorKind: ErrorKindAmbiguous},
	}
	for _, o := range cases {
		if _, err := InsertObservation(db, o); err == nil {
			t.Errorf("expected error for %+v", o)
		}
	}
}

func TestCountErrorKinds(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	sID, err := CreateOrGetSource(db, "phrase_list", "", "", "", "file:///kinds.tsv", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	kinds := []string{ErrorKindNoMatch, ErrorKindAmbiguous, ErrorKindNoMatch, ErrorKindUnknownLocale}
	for i, k := range kinds {
		if _, err := InsertObservation(db, Observation{SourceID: sID, ItemIndex: i, Locale: "en", Phrase: "x", ErrorKind: k}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := InsertObservation(db, Observation{SourceID: sID, ItemIndex: 9, Locale: "en", Phrase: "1 day", Unit: "days", Quantity: 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	counts, err := CountErrorKinds(db, sID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[ErrorKindNoMatch] != 2 || counts[ErrorKindAmbiguous] != 1 || counts[ErrorKindUnknownLocale] != 1 || len(counts) != 3 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestSourceProgress(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	sID, err := CreateOrGetSource(db, "phrase_list", "", "", "", "file:///p.tsv", "")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := UpdateSourceProgress(db, sID, 42); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := GetSourceProgress(db, sID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if _, err := GetSourceProgress(db, 9999); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows for a missing source, got %v", err)
	}
}

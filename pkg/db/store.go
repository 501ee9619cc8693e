package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, author, website, url, meta string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE IFNULL(url, '') = ? AND IFNULL(title, '') = ? AND IFNULL(author, '') = ?`,
			url, title, author,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, author, website, url, meta) VALUES (?, ?, ?, ?, ?, ?)`,
			trimmedSourceType, title, author, website, url, meta,
		)
		if err != nil {
			// Another writer inserted the same source; select it on the next pass.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// GetSource loads a source by id.
func GetSource(db DBExecutor, sourceID int64) (Source, error) {
	var (
		s                                 Source
		title, author, website, url, meta sql.NullString
		addedAt                           sql.NullTime
	)
	err := db.QueryRow(`SELECT id, source_type, title, author, website, url, meta, added_at, last_processed_item FROM sources WHERE id = ?`, sourceID).
		Scan(&s.ID, &s.SourceType, &title, &author, &website, &url, &meta, &addedAt, &s.LastProcessedItem)
	if err != nil {
		return Source{}, err
	}
	s.Title, s.Author, s.Website, s.URL, s.Meta = title.String, author.String, website.String, url.String, meta.String
	s.AddedAt = addedAt.Time
	return s, nil
}

// InsertObservation stores the outcome of one phrase. Re-processing the same
// item of a source replaces the earlier row.
func InsertObservation(db DBExecutor, o Observation) (int64, error) {
	if o.SourceID <= 0 {
		return 0, fmt.Errorf("sourceID must be positive")
	}
	if o.ItemIndex < 0 {
		return 0, fmt.Errorf("itemIndex must be non-negative, got %d", o.ItemIndex)
	}
	if (o.Unit == "") == (o.ErrorKind == "") {
		return 0, fmt.Errorf("observation needs exactly one of unit or error kind")
	}

	var id int64
	err := db.QueryRow(`INSERT INTO observations (source_id, item_index, locale, phrase, unit, quantity, published_at, approximate, error_kind)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_id, item_index) DO UPDATE SET
	  locale = excluded.locale,
	  phrase = excluded.phrase,
	  unit = excluded.unit,
	  quantity = excluded.quantity,
	  published_at = excluded.published_at,
	  approximate = excluded.approximate,
	  error_kind = excluded.error_kind
	RETURNING id`,
		o.SourceID, o.ItemIndex, o.Locale, o.Phrase,
		nullableString(o.Unit), nullableQuantity(o), nullableTime(o.PublishedAt), o.Approximate, nullableString(o.ErrorKind),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert observation: %w", err)
	}
	return id, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableQuantity(o Observation) interface{} {
	if o.Unit == "" {
		return nil
	}
	return o.Quantity
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// GetObservationsBySource returns the observations of a source in item order.
func GetObservationsBySource(db DBExecutor, sourceID int64) ([]Observation, error) {
	rows, err := db.Query(`SELECT id, source_id, item_index, locale, phrase, unit, quantity, published_at, approximate, error_kind, created_at
	FROM observations WHERE source_id = ? ORDER BY item_index`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Observation
	for rows.Next() {
		var (
			o                  Observation
			unit, errKind      sql.NullString
			qty                sql.NullInt64
			published, created sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.SourceID, &o.ItemIndex, &o.Locale, &o.Phrase, &unit, &qty, &published, &o.Approximate, &errKind, &created); err != nil {
			return nil, err
		}
		o.Unit = unit.String
		o.Quantity = int(qty.Int64)
		o.ErrorKind = errKind.String
		if published.Valid {
			o.PublishedAt = published.Time.UTC()
		}
		o.CreatedAt = created.Time
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountErrorKinds returns how many observations failed with each error kind.
func CountErrorKinds(db DBExecutor, sourceID int64) (map[string]int, error) {
	rows, err := db.Query(`SELECT error_kind, COUNT(*) FROM observations WHERE source_id = ? AND error_kind IS NOT NULL GROUP BY error_kind`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// GetSourceProgress returns the number of items of a source already processed.
func GetSourceProgress(db DBExecutor, sourceID int64) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_item FROM sources WHERE id = ?", sourceID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateSourceProgress records how many items of a source are processed.
func UpdateSourceProgress(db DBExecutor, sourceID int64, index int) error {
	_, err := db.Exec("UPDATE sources SET last_processed_item = ? WHERE id = ?", index, sourceID)
	return err
}

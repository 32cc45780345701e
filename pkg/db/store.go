package db

import (
	"database/sql"
	"time"

	"github.com/japaniel/mecab/pkg/mecab"
	"github.com/pkg/errors"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// SaveDocument stores doc and its tokens and returns the new document id.
// doc.ID, doc.TokenCount and doc.CreatedAt are filled in by the store.
// Run it inside a transaction to keep the document and its tokens together.
func SaveDocument(db DBExecutor, doc Document, tokens []mecab.Token) (int64, error) {
	if doc.Engine == "" {
		return 0, errors.New("document engine must be set")
	}
	res, err := db.Exec(
		`INSERT INTO documents (engine, title, url, text, token_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.Engine, nullableString(doc.Title), nullableString(doc.URL), doc.Text, len(tokens), time.Now().UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert document")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, tok := range tokens {
		if _, err := db.Exec(
			`INSERT INTO tokens (document_id, position, surface, raw) VALUES (?, ?, ?, ?)`,
			id, i, tok.Surface(), tok.Raw(),
		); err != nil {
			return 0, errors.Wrapf(err, "insert token %d", i)
		}
	}
	return id, nil
}

// GetDocument loads a document by id. It returns sql.ErrNoRows (wrapped) when
// there is none.
func GetDocument(db DBExecutor, id int64) (Document, error) {
	var d Document
	var title, url sql.NullString
	err := db.QueryRow(
		`SELECT id, engine, title, url, text, token_count, created_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Engine, &title, &url, &d.Text, &d.TokenCount, &d.CreatedAt)
	if err != nil {
		return Document{}, errors.Wrapf(err, "get document %d", id)
	}
	d.Title = title.String
	d.URL = url.String
	return d, nil
}

// LoadTokens rebuilds the tokens of a document in the order they were parsed.
func LoadTokens(db DBExecutor, documentID int64) ([]mecab.Token, error) {
	var engine string
	if err := db.QueryRow(`SELECT engine FROM documents WHERE id = ?`, documentID).Scan(&engine); err != nil {
		return nil, errors.Wrapf(err, "get document %d", documentID)
	}

	rows, err := db.Query(`SELECT raw FROM tokens WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]mecab.Token, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		tok, err := mecab.NewToken(mecab.Engine(engine), raw)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", documentID)
		}
		out = append(out, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindDocumentsBySurface returns the ids of documents containing a token
// with the given surface, in ascending order.
func FindDocumentsBySurface(db DBExecutor, surface string) ([]int64, error) {
	rows, err := db.Query(`SELECT DISTINCT document_id FROM tokens WHERE surface = ? ORDER BY document_id`, surface)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteDocuments removes the given documents and their tokens. Run it inside
// a transaction to remove them all or none.
func DeleteDocuments(db DBExecutor, ids []int64) error {
	for _, id := range ids {
		if _, err := db.Exec(`DELETE FROM tokens WHERE document_id = ?`, id); err != nil {
			return errors.Wrapf(err, "delete tokens of document %d", id)
		}
		if _, err := db.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
			return errors.Wrapf(err, "delete document %d", id)
		}
	}
	return nil
}

// nullableString returns nil for "" so optional columns stay NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package db

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/japaniel/mecab/pkg/mecab"
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

func tokens(t *testing.T, engine mecab.Engine, lines ...string) []mecab.Token {
	t.Helper()
	out := make([]mecab.Token, len(lines))
	for i, l := range lines {
		tok, err := mecab.NewToken(engine, l)
		if err != nil {
			t.Fatalf("NewToken(%q): %v", l, err)
		}
		out[i] = tok
	}
	return out
}

func raws(toks []mecab.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Raw()
	}
	return out
}

func TestInitDBIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
	for _, table := range []string{"documents", "tokens"} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestSaveAndLoadTokens(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	in := tokens(t, mecab.KO,
		"갔\tVV+EP,*,T,갔,Inflect,VV,EP,가/VV/*+았/EP/*",
		"다\tEF,*,F,다,*,*,*,*",
	)
	id, err := SaveDocument(db, Document{Engine: "ko", Title: "t", Text: "갔다"}, in)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	doc, err := GetDocument(db, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.TokenCount != 2 || doc.Text != "갔다" || doc.Title != "t" || doc.URL != "" {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	out, err := LoadTokens(db, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(raws(in), raws(out)); diff != "" {
		t.Errorf("tokens (-want +got):\n%s", diff)
	}
	if base, _ := out[0].Base(); base != "가" {
		t.Errorf("loaded token lost KO semantics, base = %q", base)
	}
}

func TestSaveDocumentRequiresEngine(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if _, err := SaveDocument(db, Document{Text: "x"}, nil); err == nil {
		t.Fatal("expected error for missing engine")
	}
}

func TestGetDocumentMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	if _, err := GetDocument(db, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if _, err := LoadTokens(db, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestLoadTokensEmptyDocument(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, err := SaveDocument(db, Document{Engine: "jp", Text: ""}, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadTokens(db, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("expected empty slice, got %v", out)
	}
}

func TestFindDocumentsBySurface(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := SaveDocument(db, Document{Engine: "jp", Text: "猫と犬"},
		tokens(t, mecab.JP, "猫\t名詞,一般", "と\t助詞,並立助詞", "犬\t名詞,一般"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := SaveDocument(db, Document{Engine: "jp", Text: "鳥"}, tokens(t, mecab.JP, "鳥\t名詞,一般")); err != nil {
		t.Fatalf("save: %v", err)
	}
	third, err := SaveDocument(db, Document{Engine: "jp", Text: "猫猫"},
		tokens(t, mecab.JP, "猫\t名詞,一般", "猫\t名詞,一般"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	ids, err := FindDocumentsBySurface(db, "猫")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if diff := cmp.Diff([]int64{first, third}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}

func TestSaveDocumentInTransaction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SaveDocument(tx, Document{Engine: "jp", Text: "猫"}, tokens(t, mecab.JP, "猫\t名詞")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tokens`).Scan(&cnt); err != nil {
		t.Fatal(err)
	}
	if cnt != 0 {
		t.Fatalf("expected rollback to drop tokens, found %d", cnt)
	}
}

func TestDeleteDocuments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var ids []int64
	for _, text := range []string{"猫", "犬", "鳥"} {
		id, err := SaveDocument(db, Document{Engine: "jp", Text: text}, tokens(t, mecab.JP, text+"\t名詞,一般"))
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, id)
	}

	if err := DeleteDocuments(db, []int64{ids[0], ids[2], 999}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetDocument(db, ids[0]); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("document %d still present: %v", ids[0], err)
	}
	if _, err := GetDocument(db, ids[1]); err != nil {
		t.Errorf("document %d was removed: %v", ids[1], err)
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tokens`).Scan(&cnt); err != nil {
		t.Fatal(err)
	}
	if cnt != 1 {
		t.Errorf("expected 1 remaining token, found %d", cnt)
	}
}

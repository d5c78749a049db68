//go:build !sqlite_fts5

package index

import (
	"strings"
	"testing"
	"time"
)

func TestFallbackSearch_WildcardsAreLiteral(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertMenu(MenuRow{Path: "tools/a", Description: strp("disk at 90% full"), Checksum: "1", UpdatedAt: time.Now()}, nil)
	_ = db.UpsertMenu(MenuRow{Path: "tools/b", Description: strp("plain text"), Checksum: "2", UpdatedAt: time.Now()}, nil)

	results, err := db.Search("%", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "tools/a" {
		t.Errorf("results = %+v, want only tools/a", results)
	}
}

func TestFallbackSearch_SnippetAroundMatch(t *testing.T) {
	db := testDB(t)
	desc := strings.Repeat("filler ", 40) + "needle" + strings.Repeat(" tail", 40)
	_ = db.UpsertMenu(MenuRow{Path: "tools/n", Description: strp(desc), Checksum: "1", UpdatedAt: time.Now()}, nil)

	results, err := db.Search("NEEDLE", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Snippet, "needle") {
		t.Errorf("results = %+v", results)
	}
}

func TestFallbackSearch_BlankQuery(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertMenu(MenuRow{Path: "tools/a", Checksum: "1", UpdatedAt: time.Now()}, nil)
	results, err := db.Search("  ", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("Search(blank) = %+v, %v", results, err)
	}
}

package catalog

import (
	"testing"

	"github.com/cinebuzz/discovery/models"
)

func TestDedup_NoDuplicates(t *testing.T) {
	in := []models.MediaRecord{
		rec("1", "One", 2000, 1),
		rec("2", "Two", 2000, 1),
		rec("3", "Three", 2000, 1),
	}
	got := Dedup(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Errorf("record %d id = %v, want %v", i, got[i].ID, want)
		}
	}
}

func TestDedup_SameID(t *testing.T) {
	in := []models.MediaRecord{
		rec("1", "First", 2000, 1),
		rec("2", "Other", 2000, 1),
		rec("1", "Second", 2000, 1),
	}
	got := Dedup(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Title != "First" {
		t.Errorf("expected first occurrence to win, got %v", got[0].Title)
	}
}

func TestDedup_SameTitle(t *testing.T) {
	in := []models.MediaRecord{
		rec("tmdb_movie_1", "The Matrix", 1999, 8.7),
		rec("omdb_tt0133093", "  the matrix", 1999, 8.7),
	}
	got := Dedup(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ID != "tmdb_movie_1" {
		t.Errorf("expected tmdb_movie_1, got %v", got[0].ID)
	}
}

func TestDedup_EmptyTitlesNeverMatch(t *testing.T) {
	in := []models.MediaRecord{
		rec("1", "", 2000, 1),
		rec("2", " ", 2000, 1),
		rec("3", "", 2000, 1),
	}
	got := Dedup(in)
	if len(got) != 3 {
		t.Errorf("expected untitled records to be kept, got %d", len(got))
	}
}

func TestDedup_DoesNotModifyInput(t *testing.T) {
	in := []models.MediaRecord{
		rec("1", "A", 2000, 1),
		rec("1", "B", 2000, 1),
	}
	_ = Dedup(in)
	if in[1].Title != "B" {
		t.Errorf("input was modified")
	}
}

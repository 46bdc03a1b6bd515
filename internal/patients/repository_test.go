package patients

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const rosterFixture = `[
	{"id": 1, "first_name": "Maria", "last_name": "Gomez", "dob": "1948-03-11",
	 "email": "maria@example.com", "phone": "+1-555-0101", "insurance_id": 1,
	 "chronic_conditions": ["diabetes"], "no_show_count": 1, "risk_flags": ["high_cardiac_risk"]},
	{"id": 2, "first_name": "James", "last_name": "Okafor", "dob": "1985-07-29",
	 "email": "james@example.com", "phone": "+1-555-0102", "insurance_id": 2,
	 "chronic_conditions": [], "no_show_count": 0, "risk_flags": []}
]`

func newTestRepository(t *testing.T) *FileRepository {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "patients.json"), []byte(rosterFixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return NewFileRepository(dir)
}

func TestFileRepositoryList(t *testing.T) {
	repo := newTestRepository(t)

	roster, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(roster))
	}
	if roster[0].FullName() != "Maria Gomez" {
		t.Errorf("unexpected name: %q", roster[0].FullName())
	}
}

func TestFileRepositoryFindByID(t *testing.T) {
	repo := newTestRepository(t)

	p, err := repo.FindByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if p.FirstName != "James" {
		t.Errorf("unexpected patient: %+v", p)
	}
}

func TestFileRepositoryFindByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindByID(context.Background(), 99)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestMatchesQuery(t *testing.T) {
	p := Patient{FirstName: "Maria", LastName: "Gomez", Email: "maria@example.com", Phone: "+1-555-0101"}

	cases := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"maria", true},
		{"GOMEZ", true},
		{"example.com", true},
		{"555-0101", true},
		{"okafor", false},
	}
	for _, tc := range cases {
		if got := p.MatchesQuery(tc.query); got != tc.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

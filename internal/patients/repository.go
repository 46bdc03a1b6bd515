package patients

import (
	"context"
	"path/filepath"

	"github.com/beamhealth/clinic-triage/internal/storage/jsonfile"
)

// Repository defines read access to the patient roster.
type Repository interface {
	List(ctx context.Context) ([]Patient, error)
	FindByID(ctx context.Context, id int) (*Patient, error)
}

// FileRepository reads patients from a JSON collection on disk.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository reading <dataDir>/patients.json.
func NewFileRepository(dataDir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dataDir, "patients.json")}
}

// List returns every patient in the collection.
func (r *FileRepository) List(_ context.Context) ([]Patient, error) {
	return jsonfile.Load[Patient](r.path)
}

// FindByID returns the patient with the given id, or ErrPatientNotFound.
func (r *FileRepository) FindByID(ctx context.Context, id int) (*Patient, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrPatientNotFound
}

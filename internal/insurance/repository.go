package insurance

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/beamhealth/clinic-triage/internal/storage/jsonfile"
)

// ErrInsuranceNotFound is returned when an insurance id does not resolve.
var ErrInsuranceNotFound = errors.New("insurance not found")

// Repository defines read access to insurance records.
type Repository interface {
	List(ctx context.Context) ([]Insurance, error)
	FindByID(ctx context.Context, id int) (*Insurance, error)
}

// FileRepository reads insurances from a JSON collection on disk.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository reading <dataDir>/insurances.json.
func NewFileRepository(dataDir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dataDir, "insurances.json")}
}

// List returns every insurance record in the collection.
func (r *FileRepository) List(_ context.Context) ([]Insurance, error) {
	return jsonfile.Load[Insurance](r.path)
}

// FindByID returns the insurance with the given id, or ErrInsuranceNotFound.
func (r *FileRepository) FindByID(ctx context.Context, id int) (*Insurance, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrInsuranceNotFound
}

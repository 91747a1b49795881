package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/quevendi/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileRepository serves store catalogs from a YAML or JSON snapshot file
type FileRepository struct {
	path   string
	stores map[string][]domain.Product
	mutex  sync.RWMutex
}

// NewFileRepository loads the catalog snapshot at path
func NewFileRepository(path string) (*FileRepository, error) {
	repo := &FileRepository{path: path}
	if err := repo.Reload(); err != nil {
		return nil, err
	}
	return repo, nil
}

// NewRepositoryFromReader builds an in-memory repository from a snapshot stream
func NewRepositoryFromReader(r io.Reader) (*FileRepository, error) {
	stores, err := decode(r)
	if err != nil {
		return nil, err
	}
	return &FileRepository{stores: stores}, nil
}

// Reload re-reads the snapshot file, replacing the served catalog atomically
func (r *FileRepository) Reload() error {
	if r.path == "" {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrCatalogUnavailable, r.path, err)
	}

	stores, err := decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	r.mutex.Lock()
	r.stores = stores
	r.mutex.Unlock()
	return nil
}

// ProductsByStore returns a copy of the store's products
func (r *FileRepository) ProductsByStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	products, ok := r.stores[storeID]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}

	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

// StoreIDs lists the stores present in the snapshot
func (r *FileRepository) StoreIDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	return ids
}

// decode parses a snapshot. JSON is valid YAML, so one decoder serves both.
func decode(r io.Reader) (map[string][]domain.Product, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: decode catalog: %v", domain.ErrCatalogUnavailable, err)
	}

	stores := make(map[string][]domain.Product, len(file.Stores))
	for _, store := range file.Stores {
		if store.ID == "" {
			return nil, fmt.Errorf("%w: store without id", domain.ErrCatalogUnavailable)
		}
		products := make([]domain.Product, 0, len(store.Products))
		for _, rec := range store.Products {
			products = append(products, mapToProduct(store.ID, rec))
		}
		stores[store.ID] = append(stores[store.ID], products...)
	}
	return stores, nil
}

package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"activity-feed/internal/domain/entity"
)

// LoadSeed decodes a JSON array of documents:
//
//	[{"collection": "blogPosts", "id": "p1", "createdAt": "2025-05-01T10:00:00Z",
//	  "data": {"authorId": "u1", "title": "Jeju"}}]
func LoadSeed(r io.Reader) ([]entity.Document, error) {
	var docs []entity.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i, d := range docs {
		if d.Collection == "" || d.ID == "" {
			return nil, fmt.Errorf("decode seed: document %d: collection and id are required", i)
		}
		if d.Parent != nil && (d.Parent.Collection == "" || d.Parent.ID == "") {
			return nil, fmt.Errorf("decode seed: document %s: incomplete parent", d.Path())
		}
	}
	return docs, nil
}

// ReadSeedFile decodes the seed file at path.
func ReadSeedFile(path string) ([]entity.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadSeed(f)
}

// LoadSeedFile reads a seed file and returns a store holding its documents.
func LoadSeedFile(path string) (*DocumentStore, error) {
	docs, err := ReadSeedFile(path)
	if err != nil {
		return nil, err
	}
	return NewDocumentStore(docs...), nil
}

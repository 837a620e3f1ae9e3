package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/spotfinder/pkg/errors"
)

// =============================================================================
// Scene Serialization API
// =============================================================================

// ReadFile reads a scene description file and returns the validated Scene.
func ReadFile(path string) (*Scene, error) {
	doc, err := ReadDocumentFile(path)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}

// Read decodes a scene description from r and returns the validated Scene.
func Read(r io.Reader) (*Scene, error) {
	doc, err := ReadDocument(r)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}

// ReadDocumentFile reads a scene description file without validating it.
func ReadDocumentFile(path string) (Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadDocument(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Source == "" {
		doc.Source = path
	}
	return doc, nil
}

// ReadDocument decodes a scene description from r without validating it.
// Malformed JSON is reported as INVALID_SCENE.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	return doc, nil
}

// MarshalDocument encodes doc as compact JSON. The encoding is
// deterministic for a given document and is used for content hashing.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

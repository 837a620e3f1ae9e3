package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always give equal keys.
type Keyer interface {
	// SceneKey keys the loaded summary of a scene document.
	SceneKey(sceneHash string) string

	// PlacementKey keys one placement result for a scene.
	PlacementKey(sceneHash string, opts PlacementKeyOpts) string
}

// PlacementKeyOpts holds every input that changes a placement result.
type PlacementKeyOpts struct {
	Footprint  placement.Footprint `json:"footprint"`
	Config     placement.Config    `json:"config"`
	Thresholds scene.Thresholds    `json:"thresholds"`
}

// DefaultKeyer hashes its inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SceneKey returns "scene:<hash>".
func (DefaultKeyer) SceneKey(sceneHash string) string {
	return "scene:" + sceneHash
}

// PlacementKey returns "placement:<sha256(sceneHash, opts)>".
func (DefaultKeyer) PlacementKey(sceneHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", sceneHash, opts)
}

// hashKey returns prefix + ":" + the SHA-256 of the JSON-encoded parts.
// Parts JSON cannot encode, such as NaN floats, are hashed from their Go
// syntax instead, so distinct inputs never share the empty-input key.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", parts))
	}
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}

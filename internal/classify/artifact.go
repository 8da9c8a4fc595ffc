package classify

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"eventclass/internal/dataset"
	"eventclass/internal/feature"
)

const artifactVersion = 1

// Artifact is a trained classifier bound to the exact feature
// configuration used at train time. It is immutable once produced:
// Save/Load round-trips it losslessly, and Predict after a round trip
// is identical to Predict on the in-memory artifact.
type Artifact struct {
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"created_at"`
	Columns    dataset.Columns `json:"columns"`
	SchemaHash string          `json:"schema_hash"`
	Vectorizer *Vectorizer     `json:"vectorizer"`
	Scaler     *Scaler         `json:"scaler"`
	SVM        *linearSVM      `json:"svm"`
	Metrics    *TrainMetrics   `json:"metrics,omitempty"`
}

// SchemaFingerprint hashes the feature schema a model is bound to:
// the column mapping, the text recipe, and the scalar feature list.
// Two artifacts agree on it iff their Predict inputs are
// interchangeable.
func SchemaFingerprint(cols dataset.Columns) string {
	h := blake3.New()
	fmt.Fprintf(h, "v%d|text=%s+%s|ngrams=1,2|start=%s|loc=%s|scalars=%s",
		artifactVersion,
		cols.Title, cols.Desc,
		cols.Start, cols.Loc,
		strings.Join(feature.ScalarNames(), ","),
	)
	return hex.EncodeToString(h.Sum(nil))
}

// dim is the full feature-space dimensionality: text block followed by
// the structured scalars.
func (a *Artifact) dim() int {
	return a.Vectorizer.Size() + len(feature.ScalarNames())
}

// encode maps one feature vector into the artifact's feature space.
func (a *Artifact) encode(v feature.Vector) sparseVec {
	sv := a.Vectorizer.Transform(v.Text)
	base := a.Vectorizer.Size()
	for j, x := range a.Scaler.Transform(v.Scalars()) {
		if x == 0 {
			continue
		}
		sv.idx = append(sv.idx, base+j)
		sv.val = append(sv.val, x)
	}
	return sv
}

// Save writes the artifact as JSON, atomically, with 0600 permissions.
func (a *Artifact) Save(path string) error {
	if path == "" {
		return errors.New("classify: artifact path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventclass-model-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadArtifact reads an artifact and fails fast if its bound schema
// does not match what this code would compute for the same columns.
// A mismatch means the feature extraction changed since the model was
// trained, and predictions would be garbage.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("classify: malformed artifact %s: %w", path, err)
	}
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("classify: artifact %s has version %d, this build expects %d", path, a.Version, artifactVersion)
	}
	if a.Vectorizer == nil || a.Scaler == nil || a.SVM == nil {
		return nil, fmt.Errorf("classify: artifact %s is incomplete", path)
	}
	if want := SchemaFingerprint(a.Columns); a.SchemaHash != want {
		return nil, &ConfigurationMismatchError{Bound: a.SchemaHash, Got: want}
	}
	return &a, nil
}

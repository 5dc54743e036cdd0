// Package imagestore writes and reads the vehicle photos that travel next to
// an interchange CSV file in an ExportedImages directory.
package imagestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DirName is the directory, relative to an export root, that holds images.
const DirName = "ExportedImages"

// ErrInvalidName is returned for filenames that are not plain file names.
var ErrInvalidName = errors.New("imagestore: invalid image filename")

// VehicleFilename returns the side-file name for a vehicle photo.
// The hash is derived from the vehicle ID, so repeated exports reuse the name.
func VehicleFilename(vehicleID uuid.UUID) string {
	sum := sha256.Sum256(vehicleID[:])
	return "Vehicle_" + hex.EncodeToString(sum[:8]) + ".jpg"
}

// Store reads and writes images under root/ExportedImages. Reads fall back
// to each mirror's ExportedImages directory in order.
type Store struct {
	root    string
	mirrors []string
}

// New returns a Store rooted at root. Empty mirror paths are ignored.
func New(root string, mirrors ...string) *Store {
	s := &Store{root: root}
	for _, m := range mirrors {
		if m != "" {
			s.mirrors = append(s.mirrors, m)
		}
	}
	return s
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return filepath.Join(s.root, DirName)
}

// SaveVehiclePhoto writes data for the vehicle and returns the file name
// to record in the CSV.
func (s *Store) SaveVehiclePhoto(vehicleID uuid.UUID, data []byte) (string, error) {
	name := VehicleFilename(vehicleID)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return "", fmt.Errorf("imagestore.Store.SaveVehiclePhoto: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), name), data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore.Store.SaveVehiclePhoto: %w", err)
	}
	return name, nil
}

// Load returns the bytes of the named image, trying the root first and then
// each mirror. It returns an error wrapping fs.ErrNotExist when no copy exists.
func (s *Store) Load(name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, base := range append([]string{s.root}, s.mirrors...) {
		data, err := os.ReadFile(filepath.Join(base, DirName, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("imagestore.Store.Load: %w", err)
		}
	}
	return nil, fmt.Errorf("imagestore.Store.Load: %s: %w", name, fs.ErrNotExist)
}

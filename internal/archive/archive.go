// Package archive reads and writes crawl results as zstd-compressed JSON.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
)

// Extension is appended to every archive filename.
const Extension = ".json.zst"

// ContentType is used when archives are uploaded.
const ContentType = "application/zstd"

// Metadata describes the crawl that produced an archive.
type Metadata struct {
	RunID         string               `json:"run_id,omitempty"`
	Params        catalog.SearchParams `json:"params"`
	ParamsID      string               `json:"params_id"`
	Year          int                  `json:"year"`
	DeclaredTotal int                  `json:"declared_total"`
	Count         int                  `json:"count"`
	FetchedAt     time.Time            `json:"fetched_at"`
}

// Archive is a details collection plus its metadata.
type Archive struct {
	Metadata Metadata          `json:"metadata"`
	Details  []catalog.Details `json:"details"`
}

// New builds an archive, filling ParamsID and Count.
func New(meta Metadata, details []catalog.Details) *Archive {
	meta.ParamsID = meta.Params.ID()
	meta.Count = len(details)
	if details == nil {
		details = []catalog.Details{}
	}
	return &Archive{Metadata: meta, Details: details}
}

// Filename returns the default archive name for params: "<params ID>.json.zst".
func Filename(params catalog.SearchParams) string {
	return params.ID() + Extension
}

// TimestampFilename returns "All_YYYYMMDDhhmmss.json.zst".
func TimestampFilename(t time.Time) string {
	return "All_" + t.Format("20060102150405") + Extension
}

// WithExtension appends Extension unless name already ends with it.
func WithExtension(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// Write encodes a to w.
func Write(w io.Writer, a *Archive) error {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(encoder).Encode(a); err != nil {
		_ = encoder.Close()
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

// Read decodes an archive from r.
func Read(r io.Reader) (*Archive, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var a Archive
	if err := json.NewDecoder(decoder).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return &a, nil
}

// WriteFile writes a to path through a temporary file in the same directory,
// so a failed write never leaves a truncated archive behind.
func WriteFile(path string, a *Archive) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, a); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// ReadFile reads the archive at path.
func ReadFile(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	a, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ErrEmpty is returned by Validate for an archive without details.
var ErrEmpty = errors.New("archive holds no details")

// Validate checks that Count matches the stored details.
func (a *Archive) Validate() error {
	if len(a.Details) == 0 {
		return ErrEmpty
	}
	if a.Metadata.Count != len(a.Details) {
		return fmt.Errorf("archive metadata count %d does not match %d details", a.Metadata.Count, len(a.Details))
	}
	return nil
}

package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inodb/vibe-fpsnp/internal/variant"
)

// WriteFile writes path through fn. Content goes to a temporary file in the
// same directory that is renamed over path only when fn and the close both
// succeed, so a failed write never leaves a partial table behind.
func WriteFile(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// WriteAll writes a header and every record through vw, then flushes it.
func WriteAll(vw VariantWriter, records []*variant.Validated) error {
	if err := vw.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range records {
		if err := vw.Write(v); err != nil {
			return fmt.Errorf("write %s: %w", v.ID, err)
		}
	}
	return vw.Flush()
}

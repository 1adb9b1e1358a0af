// Package archive relocates reconciled invoice files out of the archive
// folder.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrSourceMissing is returned when the archived file is not at the
// expected path. Callers treat this as a skip, not a failure: the match is
// still recorded even when the file cannot be found.
var ErrSourceMissing = errors.New("archive: source file missing")

// Mover moves matched invoice files from the archive folder into its
// reconciled subfolder.
type Mover struct {
	archiveDir    string
	reconciledDir string
}

// NewMover creates a mover and ensures the reconciled folder exists.
func NewMover(archiveDir, reconciledDir string) (*Mover, error) {
	if err := os.MkdirAll(reconciledDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reconciled folder: %w", err)
	}
	return &Mover{archiveDir: archiveDir, reconciledDir: reconciledDir}, nil
}

// ReconciledDir returns the destination folder.
func (m *Mover) ReconciledDir() string {
	return m.reconciledDir
}

// Move relocates filename from the archive folder to the reconciled
// folder. Returns ErrSourceMissing when the file is not present.
func (m *Mover) Move(filename string) error {
	// Filenames come from sheet cells; never let them escape the archive
	// folder.
	base := filepath.Base(filename)
	src := filepath.Join(m.archiveDir, base)
	dst := filepath.Join(m.reconciledDir, base)

	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return ErrSourceMissing
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.Rename(src, dst); err != nil {
		// Rename fails across filesystems; fall back to copy and remove.
		if copyErr := copyFile(src, dst); copyErr != nil {
			return fmt.Errorf("move %s: %w", base, copyErr)
		}
		if rmErr := os.Remove(src); rmErr != nil {
			return fmt.Errorf("remove source %s: %w", base, rmErr)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

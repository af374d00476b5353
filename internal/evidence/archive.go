package evidence

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"aigov/internal/errors"
)

// writeArchive materializes the zip at zipPath containing the named files from
// runDir, entries stored under their bare names. The archive is written to a
// temp sibling and renamed into place only after a clean close, so a failed
// run never leaves a partial archive at the canonical path.
func writeArchive(zipPath, runDir string, names []string) error {
	tmpPath := zipPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(errors.EvidenceIO, "create archive", err)
	}

	if err := writeArchiveEntries(f, runDir, names); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.EvidenceIO, "close archive", err)
	}
	if err := os.Rename(tmpPath, zipPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.EvidenceIO, "finalize archive", err)
	}
	return nil
}

func writeArchiveEntries(w io.Writer, runDir string, names []string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, name := range names {
		src, err := os.Open(filepath.Join(runDir, name))
		if err != nil {
			zw.Close()
			return errors.Wrap(errors.EvidenceIO, fmt.Sprintf("open artifact %s", name), err)
		}
		entry, err := zw.Create(name)
		if err != nil {
			src.Close()
			zw.Close()
			return errors.Wrap(errors.EvidenceIO, fmt.Sprintf("add archive entry %s", name), err)
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			zw.Close()
			return errors.Wrap(errors.EvidenceIO, fmt.Sprintf("write archive entry %s", name), err)
		}
		src.Close()
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.EvidenceIO, "flush archive", err)
	}
	return nil
}

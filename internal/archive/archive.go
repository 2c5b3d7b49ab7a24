// Package archive packages one trading day's recorded CSVs into a
// tar.gz and removes the working directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type Archiver struct {
	recordDir  string
	archiveDir string
	log        *zap.Logger
}

func New(recordDir, archiveDir string, log *zap.Logger) *Archiver {
	return &Archiver{
		recordDir:  recordDir,
		archiveDir: archiveDir,
		log:        log.Named("archive"),
	}
}

// Archive compresses <recordDir>/<tradingDay> into
// <archiveDir>/<tradingDay>.tar.gz and removes the source directory.
// The source directory is only removed after the archive is fully
// written.
func (a *Archiver) Archive(tradingDay string) error {
	src := filepath.Join(a.recordDir, tradingDay)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := os.MkdirAll(a.archiveDir, 0o755); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	dst := filepath.Join(a.archiveDir, tradingDay+".tar.gz")
	if err := a.write(src, dst, tradingDay); err != nil {
		os.Remove(dst)
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("archive: remove %s: %w", src, err)
	}
	a.log.Info("day archived", zap.String("trading_day", tradingDay), zap.String("path", dst))
	return nil
}

func (a *Archiver) write(src, dst, tradingDay string) error {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	tw := tar.NewWriter(gz)

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(tradingDay, rel))

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(tw, in)
		return err
	})
	if err != nil {
		return fmt.Errorf("archive: walk %s: %w", src, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return f.Close()
}

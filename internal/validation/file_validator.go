package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "salespulse/internal/errors"
)

// SupportedExtensions are the input formats the loaders understand
var SupportedExtensions = []string{".csv", ".xlsx"}

// IsSupported reports whether name has a loadable extension. Excel lock
// files (~$name.xlsx) are never supported.
func IsSupported(name string) bool {
	if strings.HasPrefix(filepath.Base(name), "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// FileValidator guards input files, uploads and output directories
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a file validator. maxBytes <= 0 disables the
// size guard.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger.With(slog.String("component", "file_validator")),
		maxBytes: maxBytes,
	}
}

// ValidateInputDirectory checks that dir exists and is a directory
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		v.logger.Error("input directory unavailable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewResourceError(apperrors.CodeStorageFailure,
			fmt.Sprintf("input directory %s %s", dir, describe(err)), err).
			WithContext("path", dir)
	}
	if !info.IsDir() {
		return apperrors.NewResourceError(apperrors.CodeStorageFailure,
			fmt.Sprintf("%s is not a directory", dir), nil).
			WithContext("path", dir)
	}
	return nil
}

// ValidateOutputDirectory creates dir when needed and proves it is writable
// by creating and removing a temporary file
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return unwritable(dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return unwritable(dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateOutputFile checks the directory that will hold path
func (v *FileValidator) ValidateOutputFile(path string) error {
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateFile checks that path is a readable regular file of a supported
// format within the size limit
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("input file unavailable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewResourceError(apperrors.CodeStorageFailure,
			fmt.Sprintf("file %s %s", path, describe(err)), err).
			WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewResourceError(apperrors.CodeStorageFailure,
			fmt.Sprintf("%s is a directory, not a file", path), nil).
			WithContext("path", path)
	}
	if err := v.ValidateUpload(path, info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewResourceError(apperrors.CodeStorageFailure,
			fmt.Sprintf("file %s %s", path, describe(err)), err).
			WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateUpload checks a named payload of size bytes without touching disk
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	if !IsSupported(name) {
		return apperrors.NewValidationError(apperrors.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported file type %q for %s; expected %s",
				filepath.Ext(name), filepath.Base(name), strings.Join(SupportedExtensions, " or ")))
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("file exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return apperrors.NewValidationError(apperrors.CodeFileTooLarge,
			fmt.Sprintf("%s is %d bytes; the limit is %d bytes", filepath.Base(name), size, v.maxBytes)).
			WithContext("size", size)
	}
	return nil
}

// MaxBytes returns the configured size limit
func (v *FileValidator) MaxBytes() int64 { return v.maxBytes }

func unwritable(dir string, cause error) error {
	return apperrors.NewResourceError(apperrors.CodeOutputUnwritable,
		fmt.Sprintf("cannot write to %s: %s", dir, describe(cause)), cause).
		WithContext("path", dir)
}

// describe turns common OS failures into plain words
func describe(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "does not exist"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case errors.Is(err, fs.ErrExist):
		return "already exists as a file"
	default:
		return err.Error()
	}
}

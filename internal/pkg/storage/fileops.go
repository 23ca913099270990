package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// FileOperation represents a file operation result
type FileOperation struct {
	Success  bool          `json:"success"`
	FilePath string        `json:"file_path"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
	Error    error         `json:"error,omitempty"`
}

// SaveFile writes the reader's content to destPath, creating parent
// directories as needed. A partially written file is removed on error.
func SaveFile(data io.Reader, destPath string) (*FileOperation, error) {
	startTime := time.Now()

	operation := &FileOperation{FilePath: destPath}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		operation.Error = fmt.Errorf("failed to create directory %s: %w", dir, err)
		operation.Duration = time.Since(startTime)
		return operation, operation.Error
	}

	file, err := os.Create(destPath)
	if err != nil {
		operation.Error = fmt.Errorf("failed to create file %s: %w", destPath, err)
		operation.Duration = time.Since(startTime)
		return operation, operation.Error
	}
	defer file.Close()

	bytesWritten, err := io.Copy(file, data)
	if err != nil {
		operation.Error = fmt.Errorf("failed to write file %s: %w", destPath, err)
		operation.Duration = time.Since(startTime)
		// Clean up partial file
		os.Remove(destPath)
		return operation, operation.Error
	}

	operation.Success = true
	operation.Bytes = bytesWritten
	operation.Duration = time.Since(startTime)

	log.Infof("[Storage] saved file %s (%d bytes) in %v", destPath, bytesWritten, operation.Duration)

	return operation, nil
}

// PlaceFile moves sourcePath to destPath by copy-then-delete. A plain rename
// would fail when source and destination live on different volumes, which is
// the normal case for uploads staged in the OS temp directory.
func PlaceFile(sourcePath, destPath string) (*FileOperation, error) {
	startTime := time.Now()

	operation := &FileOperation{FilePath: destPath}

	fileInfo, err := os.Stat(sourcePath)
	if err != nil {
		operation.Error = fmt.Errorf("failed to stat source file %s: %w", sourcePath, err)
		operation.Duration = time.Since(startTime)
		return operation, operation.Error
	}
	fileSize := fileInfo.Size()

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		operation.Error = fmt.Errorf("failed to create directory %s: %w", dir, err)
		operation.Duration = time.Since(startTime)
		return operation, operation.Error
	}

	if err := copyFile(sourcePath, destPath); err != nil {
		operation.Error = fmt.Errorf("failed to copy file from %s to %s: %w", sourcePath, destPath, err)
		operation.Duration = time.Since(startTime)
		return operation, operation.Error
	}

	// Delete source file after successful copy
	if err := os.Remove(sourcePath); err != nil {
		log.Errorf("[Storage] failed to remove source file %s after placement: %v", sourcePath, err)
		// Don't fail the operation for this
	}

	operation.Success = true
	operation.Bytes = fileSize
	operation.Duration = time.Since(startTime)

	log.Infof("[Storage] placed file %s (%d bytes) at %s in %v", sourcePath, fileSize, destPath, operation.Duration)

	return operation, nil
}

// MoveTree moves the whole directory tree at oldDir to newDir, creating
// newDir's parent first. It prefers a single rename and falls back to
// copy-then-remove when the two paths live on different devices.
func MoveTree(oldDir, newDir string) error {
	parent := filepath.Dir(newDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", parent, err)
	}

	err := os.Rename(oldDir, newDir)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s to %s: %w", oldDir, newDir, err)
	}

	// Cross-device move: copy the whole tree, then remove the source
	log.Debugf("[Storage] cross-device move %s -> %s, copying tree", oldDir, newDir)
	if err := copyTree(oldDir, newDir); err != nil {
		return fmt.Errorf("failed to copy tree from %s to %s: %w", oldDir, newDir, err)
	}
	if err := os.RemoveAll(oldDir); err != nil {
		return fmt.Errorf("failed to remove source tree %s: %w", oldDir, err)
	}

	return nil
}

// RemoveTree recursively removes dir and everything under it. Removing a
// missing tree is not an error.
func RemoveTree(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return nil
}

// copyFile copies a file from source to destination
func copyFile(source, destination string) error {
	sourceFile, err := os.Open(source)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		os.Remove(destination) // Clean up on error
		return err
	}

	return destFile.Sync()
}

// copyTree copies the directory tree rooted at srcDir into destDir.
func copyTree(srcDir, destDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

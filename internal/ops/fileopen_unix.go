//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/tutorhub/internal/errors"
)

// openNoFollow opens path without following a symlink in the final component.
// Parent directories are covered by ValidatePath.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		switch {
		case stderrors.Is(err, syscall.ELOOP):
			return nil, errors.NewInvalidRequest("path must not be a symlink")
		case stderrors.Is(err, syscall.ENOENT):
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

func createCatalogFile(path string) (*os.File, error) {
	return openNoFollow(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
}

func openCatalogFile(path string) (*os.File, error) {
	return openNoFollow(path, os.O_RDONLY, 0)
}

//go:build !windows

package snapshot

import (
	"os"

	"github.com/google/renameio/v2"
)

// atomicWriteFile replaces path in one rename.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}

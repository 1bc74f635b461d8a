package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/tapevm/internal/config"
)

// ExtractExprName derives an expression name from a file path.
// It takes the base filename and removes any recognized extension.
func ExtractExprName(path string) string {
	return config.TrimExprExt(filepath.Base(path))
}

// ReplaceExt swaps the extension of path for ext. A path without an
// extension gets ext appended.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

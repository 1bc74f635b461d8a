package config

import "strings"

// ExprFileExt is the default extension of expression files.
const ExprFileExt = ".yaml"

// ExprFileExtensions are all recognized expression file extensions
var ExprFileExtensions = []string{".yaml", ".yml"}

// SexprFileExt is the extension of expressions written as s-expressions.
const SexprFileExt = ".sx"

// TapeFileExt is the extension of serialized tape bundles.
const TapeFileExt = ".tape"

// Run configuration file names, in lookup order.
var ConfigFileNames = []string{"tapevm.yaml", "tapevm.yml"}

// Backend names
const (
	BackendVM       = "vm"
	BackendVMDirect = "vm-direct"
	BackendClosure  = "closure"
	BackendTree     = "tree"
)

// DefaultBackend is used when nothing else is selected.
const DefaultBackend = BackendVM

// Defaults for benchmark runs
const (
	DefaultIterations = 1000
	DefaultResultsDB  = "tapevm-results.db"
	DefaultHistory    = 20
)

// SampleArgCount is the number of arguments the built-in sample reads:
// the iteration count and the addend.
const SampleArgCount = 2

// Environment overrides
const (
	EnvBackend    = "TAPEVM_BACKEND"
	EnvIterations = "TAPEVM_ITERATIONS"
	EnvResultsDB  = "TAPEVM_RESULTS_DB"
	EnvNoColor    = "NO_COLOR"
)

// IsExprFile reports whether name has an expression file extension.
func IsExprFile(name string) bool {
	for _, ext := range ExprFileExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsSexprFile reports whether name has the s-expression file extension.
func IsSexprFile(name string) bool {
	return len(name) > len(SexprFileExt) && name[len(name)-len(SexprFileExt):] == SexprFileExt
}

// TrimExprExt removes an expression, s-expression or tape extension from name.
func TrimExprExt(name string) string {
	for _, ext := range append(ExprFileExtensions, SexprFileExt, TapeFileExt) {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

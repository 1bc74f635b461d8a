package targets

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/funvibe/tapevm/internal/config"
)

func init() {
	// Cap fuzz worker parallelism unless the caller explicitly set GOMAXPROCS.
	if _, ok := os.LookupEnv("GOMAXPROCS"); !ok {
		max := runtime.NumCPU()
		if max > 4 {
			max = 4
		}
		if runtime.GOMAXPROCS(0) > max {
			runtime.GOMAXPROCS(max)
		}
	}
}

// exprSeeds drive generators.NewFromData into loops, nested binds and
// assignments early, before the fuzzer has learned anything.
var exprSeeds = [][]byte{
	{},
	{4, 0, 1, 2, 3},
	{5, 5, 5, 5, 1, 1, 1, 1},
	{6, 1, 1, 5, 5, 0, 3, 7, 2, 2, 9},
	{7, 2, 1, 4, 4, 4, 0, 6, 6, 1, 3, 3, 8, 200, 17},
}

func addExprSeeds(f *testing.F) {
	for _, seed := range exprSeeds {
		f.Add(seed)
	}
}

// addSourceCorpus adds every s-expression file under dirs as a string seed.
// Missing directories are skipped.
func addSourceCorpus(f *testing.F, dirs ...string) {
	for _, dir := range dirs {
		filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !config.IsSexprFile(path) {
				return nil
			}
			if data, err := os.ReadFile(path); err == nil {
				f.Add(string(data))
			}
			return nil
		})
	}
}

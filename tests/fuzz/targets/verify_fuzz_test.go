package targets

import (
	"testing"

	"github.com/funvibe/tapevm/internal/vm"
	"github.com/funvibe/tapevm/tests/fuzz/generators"
)

// FuzzVerify runs the verifier over random tapes. Tapes it accepts must
// execute without a runtime failure on both dispatchers; only tapes with
// forward jumps are executed, since the verifier does not prove
// termination.
func FuzzVerify(f *testing.F) {
	f.Add([]byte{0, 0, 10})
	f.Add([]byte{3, 0, 5, 0, 7, 3, 10})
	f.Add([]byte{12, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13})

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 500 {
			return
		}

		p := generators.NewTapeGenerator(data).GenerateProgram()
		info, err := vm.Verify(p)
		if err != nil {
			return
		}
		if !generators.ForwardOnly(p) {
			return
		}

		args := make([]int64, info.MaxArgument+1)
		for i := range args {
			args[i] = int64(i*7 - 3)
		}

		want, err := vm.New().Run(p, args)
		if err != nil {
			t.Fatalf("verified tape failed: %v\n%s", err, vm.Disassemble(p, "tape"))
		}

		threaded, err := vm.Thread(p)
		if err != nil {
			t.Fatalf("Thread: %v", err)
		}
		if got := threaded.Execute(args); got != want {
			t.Fatalf("direct dispatch returned %d, switch %d\n%s", got, want, vm.Disassemble(p, "tape"))
		}
	})
}

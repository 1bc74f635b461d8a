package targets

import (
	"bytes"
	"testing"

	"github.com/funvibe/tapevm/internal/vm"
	"github.com/funvibe/tapevm/tests/fuzz/generators"
)

// FuzzBundleRoundTrip tests the serialization roundtrip:
// compile → serialize → deserialize → run, comparing with direct execution.
func FuzzBundleRoundTrip(f *testing.F) {
	addExprSeeds(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1000 {
			return
		}

		gen := generators.NewFromData(data)
		expr := gen.GenerateExpr()
		args := gen.GenerateArgs()

		program := vm.Compile(expr)
		encoded, err := program.Serialize()
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		restored, err := vm.Deserialize(encoded)
		if err != nil {
			t.Fatalf("Deserialize of a compiled tape: %v\n%s", err, vm.Disassemble(program, "tape"))
		}

		if restored.MaxStack != program.MaxStack || restored.MaxLocals != program.MaxLocals ||
			restored.MaxArgument != program.MaxArgument {
			t.Fatalf("statistics changed: compiled %d/%d/%d, verified %d/%d/%d",
				program.MaxStack, program.MaxLocals, program.MaxArgument,
				restored.MaxStack, restored.MaxLocals, restored.MaxArgument)
		}

		want := vm.Execute(program, args)
		if got := vm.Execute(restored, args); got != want {
			t.Fatalf("restored tape returned %d, want %d", got, want)
		}

		again, err := restored.Serialize()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(encoded, again) {
			t.Fatal("serialization is not stable")
		}
	})
}

// FuzzDeserialize feeds arbitrary bytes to the bundle decoder. It must
// never panic, and anything it accepts must be a verified tape.
func FuzzDeserialize(f *testing.F) {
	valid, _ := vm.Compile(generators.New(1).GenerateExpr()).Serialize()
	f.Add(valid)
	f.Add([]byte("TAPE"))
	f.Add([]byte("TAPE\x01"))
	f.Add([]byte("TAPE\x02xx"))
	f.Add([]byte("NOPE\x01"))

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := vm.Deserialize(data)
		if err != nil {
			return
		}
		if _, err := vm.Verify(p); err != nil {
			t.Fatalf("Deserialize accepted an unverifiable tape: %v", err)
		}
	})
}

package vm

import (
	"errors"
	"testing"
)

func TestHandlersCoverEveryOpcode(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		if handlers[op] == nil {
			t.Errorf("no handler for %s", op)
		}
		if _, ok := OpcodeNames[op]; !ok {
			t.Errorf("no name for opcode %d", op)
		}
	}
}

func TestThreadRejectsUnknownOpcodes(t *testing.T) {
	_, err := Thread(&Program{Code: []Instruction{{opcodeCount, 0}, {OP_HALT, 0}}})
	if !errors.Is(err, ErrMalformedProgram) {
		t.Errorf("err = %v, want ErrMalformedProgram", err)
	}
}

func TestThreadedArity(t *testing.T) {
	threaded, err := Thread(Compile(accumulate()))
	if err != nil {
		t.Fatal(err)
	}
	if threaded.Arity() != 2 {
		t.Errorf("Arity = %d, want 2", threaded.Arity())
	}
}

func BenchmarkSwitchDispatch(b *testing.B) {
	p := Compile(accumulate())
	machine := New()
	args := []int64{10000, 13}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if machine.Execute(p, args) != 130000 {
			b.Fatal("wrong result")
		}
	}
}

func BenchmarkDirectDispatch(b *testing.B) {
	threaded, err := Thread(Compile(accumulate()))
	if err != nil {
		b.Fatal(err)
	}
	args := []int64{10000, 13}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if threaded.Execute(args) != 130000 {
			b.Fatal("wrong result")
		}
	}
}

package vm

import (
	"github.com/funvibe/tapevm/internal/ast"
	"testing"
)

func testTape(t *testing.T, p *Program, expected []Instruction) {
	t.Helper()
	if len(p.Code) != len(expected) {
		t.Fatalf("tape length %d, want %d\n%s", len(p.Code), len(expected), Disassemble(p, "got"))
	}
	for i := range expected {
		if p.Code[i] != expected[i] {
			t.Errorf("instruction %d = %s %d, want %s %d", i,
				p.Code[i].Op, p.Code[i].Data, expected[i].Op, expected[i].Data)
		}
	}
}

func TestCompileAccumulationLoop(t *testing.T) {
	p := Compile(accumulate())

	testTape(t, p, []Instruction{
		{OP_PUSH_LITERAL, 0},
		{OP_PUSH_BINDING, 0},
		{OP_PUSH_ARGUMENT, 0},
		{OP_PUSH_BINDING, 0},
		{OP_PUSH_LOCAL, 0}, // loop start
		{OP_BRANCH_IF_NOT_POSITIVE, 15},
		{OP_PUSH_LOCAL, 1},
		{OP_PUSH_ARGUMENT, 1},
		{OP_ADD, 0},
		{OP_STORE_LOCAL, 1},
		{OP_PUSH_LOCAL, 0},
		{OP_PUSH_LITERAL, -1},
		{OP_ADD, 0},
		{OP_STORE_LOCAL, 0},
		{OP_JUMP, 4},
		{OP_POP_BINDING, 0}, // loop exit
		{OP_PUSH_LOCAL, 0},
		{OP_POP_BINDING, 0},
		{OP_HALT, 0},
	})

	if p.MaxStack != 2 {
		t.Errorf("MaxStack = %d, want 2", p.MaxStack)
	}
	if p.MaxLocals != 2 {
		t.Errorf("MaxLocals = %d, want 2", p.MaxLocals)
	}
	if p.MaxArgument != 1 || p.Arity() != 2 {
		t.Errorf("MaxArgument = %d, Arity = %d, want 1 and 2", p.MaxArgument, p.Arity())
	}
}

func TestCompileAssignInSequence(t *testing.T) {
	p := Compile(bind(lit(0), ast.Seq(assign(0, lit(5)), local(0))))

	testTape(t, p, []Instruction{
		{OP_PUSH_LITERAL, 0},
		{OP_PUSH_BINDING, 0},
		{OP_PUSH_LITERAL, 5},
		{OP_STORE_LOCAL, 0},
		{OP_PUSH_LOCAL, 0},
		{OP_POP_BINDING, 0},
		{OP_HALT, 0},
	})
}

func TestCompileDiscardsValues(t *testing.T) {
	tests := []struct {
		name     string
		expr     ast.Expr
		expected []Instruction
	}{
		{
			"sequence pops value-producing first",
			ast.Seq(lit(1), lit(2)),
			[]Instruction{{OP_PUSH_LITERAL, 1}, {OP_POP, 0}, {OP_PUSH_LITERAL, 2}, {OP_HALT, 0}},
		},
		{
			"loop pops value-producing body",
			ast.Seq(loop(lit(0), lit(7)), lit(1)),
			[]Instruction{
				{OP_PUSH_LITERAL, 0},
				{OP_BRANCH_IF_NOT_POSITIVE, 5},
				{OP_PUSH_LITERAL, 7},
				{OP_POP, 0},
				{OP_JUMP, 0},
				{OP_PUSH_LITERAL, 1},
				{OP_HALT, 0},
			},
		},
		{
			"bind with statement body leaves nothing to pop",
			ast.Seq(bind(lit(1), assign(0, lit(2))), lit(3)),
			[]Instruction{
				{OP_PUSH_LITERAL, 1},
				{OP_PUSH_BINDING, 0},
				{OP_PUSH_LITERAL, 2},
				{OP_STORE_LOCAL, 0},
				{OP_POP_BINDING, 0},
				{OP_PUSH_LITERAL, 3},
				{OP_HALT, 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testTape(t, Compile(tt.expr), tt.expected)
		})
	}
}

func TestCompileNestedLoopsPatchOwnExits(t *testing.T) {
	// outer: while a { inner: while b { b := b - 1 }; a := a - 1 }
	expr := bind(lit(2), ast.Seq(
		bind(lit(0), loop(local(1), ast.Seq(
			assign(0, lit(3)),
			loop(local(0), assign(0, addExpr(local(0), lit(-1)))),
			assign(1, addExpr(local(1), lit(-1))),
		))),
		local(0),
	))
	p := Compile(expr)

	var branches []int
	for i, ins := range p.Code {
		if ins.Op == OP_BRANCH_IF_NOT_POSITIVE {
			branches = append(branches, i)
		}
	}
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, found %d", len(branches))
	}
	for _, b := range branches {
		target := int(p.Code[b].Data)
		if target <= b || target >= p.Len() {
			t.Errorf("branch at %d targets %d, outside (%d, %d)", b, target, b, p.Len())
		}
		if prev := p.Code[target-1]; prev.Op != OP_JUMP || int(prev.Data) >= b {
			t.Errorf("branch at %d does not exit just past its own back-jump", b)
		}
	}

	if _, err := Verify(p); err != nil {
		t.Errorf("Verify: %v", err)
	}
	testIntegerResult(t, expr, nil, runBoth(t, expr, nil))
}

func TestCompileIsDeterministic(t *testing.T) {
	a := Compile(accumulate())
	b := Compile(accumulate())
	testTape(t, b, a.Code)
}

func TestCompileUnknownNodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Compile to panic on a nil expression")
		}
	}()
	Compile(nil)
}

package vm

import (
	"errors"
	"fmt"
)

var ErrInvalidProgram = errors.New("invalid program")

// VerifyInfo summarises a tape that passed Verify.
type VerifyInfo struct {
	MaxStack    int
	MaxLocals   int
	MaxArgument int
}

// depthState is the operand and locals depth on entry to an instruction.
type depthState struct {
	stack  int
	locals int
}

// Verify proves that p can be run by Execute without indexing outside its
// stacks: every reachable instruction is entered with one consistent
// (operand, locals) depth, no instruction underflows, local offsets stay in
// scope, jump targets stay on the tape, and HALT is reached with exactly one
// operand and no live bindings. Argument indices are reported, not checked;
// compare VerifyInfo.MaxArgument with the argument vector.
func Verify(p *Program) (*VerifyInfo, error) {
	code := p.Code
	n := len(code)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty tape", ErrInvalidProgram)
	}
	if code[n-1].Op != OP_HALT {
		return nil, fmt.Errorf("%w: tape does not end in HALT", ErrInvalidProgram)
	}

	info := &VerifyInfo{MaxArgument: -1}
	states := make([]depthState, n)
	seen := make([]bool, n)
	seen[0] = true
	work := []int{0}

	flow := func(from, to int, next depthState) error {
		if to < 0 || to >= n {
			return fmt.Errorf("%w: instruction %d jumps to %d outside tape of %d", ErrInvalidProgram, from, to, n)
		}
		if !seen[to] {
			seen[to] = true
			states[to] = next
			work = append(work, to)
			return nil
		}
		if states[to] != next {
			return fmt.Errorf("%w: instruction %d reached with depth %d/%d and %d/%d",
				ErrInvalidProgram, to, states[to].stack, states[to].locals, next.stack, next.locals)
		}
		return nil
	}

	for len(work) > 0 {
		pc := work[len(work)-1]
		work = work[:len(work)-1]
		in := states[pc]
		ins := code[pc]
		out := in

		need := func(k int) error {
			if in.stack < k {
				return fmt.Errorf("%w: %s at %d needs %d operands, has %d", ErrInvalidProgram, ins.Op, pc, k, in.stack)
			}
			return nil
		}
		local := func() error {
			if ins.Data < 0 || ins.Data >= int64(in.locals) {
				return fmt.Errorf("%w: %s at %d uses offset %d with %d bindings", ErrInvalidProgram, ins.Op, pc, ins.Data, in.locals)
			}
			return nil
		}

		var err error
		switch ins.Op {
		case OP_PUSH_LITERAL:
			out.stack++
		case OP_PUSH_ARGUMENT:
			if ins.Data < 0 || ins.Data > int64(^uint32(0)>>1) {
				err = fmt.Errorf("%w: argument index %d at %d", ErrInvalidProgram, ins.Data, pc)
				break
			}
			info.MaxArgument = max(info.MaxArgument, int(ins.Data))
			out.stack++
		case OP_PUSH_LOCAL:
			err = local()
			out.stack++
		case OP_ADD:
			err = need(2)
			out.stack--
		case OP_POP:
			err = need(1)
			out.stack--
		case OP_PUSH_BINDING:
			err = need(1)
			out.stack--
			out.locals++
		case OP_POP_BINDING:
			if in.locals < 1 {
				err = fmt.Errorf("%w: POP_BINDING at %d with no bindings", ErrInvalidProgram, pc)
			}
			out.locals--
		case OP_STORE_LOCAL:
			if err = need(1); err == nil {
				err = local()
			}
			out.stack--
		case OP_BRANCH_IF_NOT_POSITIVE:
			if err = need(1); err == nil {
				out.stack--
				err = flow(pc, int(ins.Data), out)
			}
		case OP_JUMP:
			if err = flow(pc, int(ins.Data), out); err != nil {
				return nil, err
			}
			continue
		case OP_HALT:
			if in.stack != 1 || in.locals != 0 {
				return nil, fmt.Errorf("%w: HALT at %d with %d operands and %d bindings", ErrInvalidProgram, pc, in.stack, in.locals)
			}
			continue
		default:
			err = fmt.Errorf("%w: unknown opcode %d at %d", ErrInvalidProgram, ins.Op, pc)
		}
		if err != nil {
			return nil, err
		}

		info.MaxStack = max(info.MaxStack, out.stack)
		info.MaxLocals = max(info.MaxLocals, out.locals)
		if err := flow(pc, pc+1, out); err != nil {
			return nil, err
		}
	}

	return info, nil
}

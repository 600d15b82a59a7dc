package txsystem

import (
	"errors"
	"fmt"

	"github.com/alphabill-org/auctionhouse/types"
)

type (
	// TxExecutors maps instruction type name to its handler.
	TxExecutors map[string]ExecuteFunc

	ExecuteFunc func(ins *Instruction, exeCtx *ExecutionContext) error

	GenericExecuteFunc[T any] func(ins *Instruction, attr *T, exeCtx *ExecutionContext) error

	// Module is a program: a set of instruction handlers under one program ID.
	Module interface {
		ProgramID() types.Address
		TxExecutors() TxExecutors
	}

	programs map[types.Address]TxExecutors
)

var ErrUnknownInstruction = errors.New("unknown instruction")

func (g GenericExecuteFunc[T]) ExecuteFunc() ExecuteFunc {
	return func(ins *Instruction, exeCtx *ExecutionContext) error {
		attr := new(T)
		if err := ins.UnmarshalAttributes(attr); err != nil {
			return fmt.Errorf("failed to unmarshal %s attributes: %w", ins.Type, err)
		}
		return g(ins, attr, exeCtx)
	}
}

func (e TxExecutors) Add(src TxExecutors) error {
	for name, handler := range src {
		if name == "" {
			return fmt.Errorf("tx executor must have non-empty tx type name")
		}
		if handler == nil {
			return fmt.Errorf("tx executor must not be nil (%s)", name)
		}
		if _, ok := e[name]; ok {
			return fmt.Errorf("tx executor for %q is already registered", name)
		}
		e[name] = handler
	}
	return nil
}

func (p programs) add(m Module) error {
	id := m.ProgramID()
	executors, ok := p[id]
	if !ok {
		executors = make(TxExecutors)
		p[id] = executors
	}
	if err := executors.Add(m.TxExecutors()); err != nil {
		return fmt.Errorf("program %s: %w", id, err)
	}
	return nil
}

func (p programs) execute(ins *Instruction, exeCtx *ExecutionContext) error {
	if ins == nil {
		return errors.New("instruction is nil")
	}
	executor, found := p[ins.ProgramID][ins.Type]
	if !found {
		return fmt.Errorf("%w: %s %q", ErrUnknownInstruction, ins.ProgramID, ins.Type)
	}
	if err := executor(ins, exeCtx); err != nil {
		return fmt.Errorf("%s failed: %w", ins.Type, err)
	}
	return nil
}

package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrEntityDoesNotExist    = errors.New("entity does not exist")
	ErrComponentDoesNotExist = errors.New("component does not exist")
)

// EntityDoesNotExistError is returned when an id is not live or is past the
// end of a pool.
type EntityDoesNotExistError struct {
	ID uint32
}

func (e *EntityDoesNotExistError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.ID)
}

func (e *EntityDoesNotExistError) Is(target error) bool { return target == ErrEntityDoesNotExist }

// ComponentDoesNotExistError is returned when a component type was never
// registered with the component manager.
type ComponentDoesNotExistError struct {
	Type string
}

func (e *ComponentDoesNotExistError) Error() string {
	return fmt.Sprintf("component %s does not exist", e.Type)
}

func (e *ComponentDoesNotExistError) Is(target error) bool {
	return target == ErrComponentDoesNotExist
}

// BorrowError is the panic value raised when a pool or resource view would
// alias an outstanding exclusive view.
type BorrowError struct {
	Target string
	Op     string
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("ecs: %s: %s", e.Target, e.Op)
}

func entityMissing(id uint32) error { return &EntityDoesNotExistError{ID: id} }

func componentMissing(name string) error { return &ComponentDoesNotExistError{Type: name} }

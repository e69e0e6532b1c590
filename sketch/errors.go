package sketch

import "fmt"

// GeometryError reports an operation whose result is empty or otherwise
// not a valid region or solid. The geometry is deterministic given its
// inputs so retrying the operation never helps.
type GeometryError struct {
	Op  string
	Msg string
	Err error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return e.Op + ": " + e.Msg
}

func (e *GeometryError) Unwrap() error { return e.Err }

package msg

import "fmt"

// DecodeError reports a payload that could not be parsed. Structure names
// the argument set that failed.
type DecodeError struct {
	Structure string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Structure, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

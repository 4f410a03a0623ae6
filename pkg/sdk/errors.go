package sdk

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-sdk/pkg/msg"
)

// Session errors.
var (
	ErrUnknownKind   = errors.New("unknown transaction kind")
	ErrChainMismatch = errors.New("transaction chain id does not match tx args")
)

// BuilderError reports a transaction builder rejecting its arguments. Err is
// the builder's error, unmodified.
type BuilderError struct {
	Kind msg.Kind
	Err  error
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Kind, e.Err)
}

func (e *BuilderError) Unwrap() error { return e.Err }

// QueryError reports a failed chain state read. Op names the query.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

package starknet

import (
	"errors"
	"fmt"

	"github.com/mbd888/starknet-mcp/internal/circuitbreaker"
	"github.com/mbd888/starknet-mcp/internal/felt"
)

var (
	// ErrRPC matches every error reported by a JSON-RPC provider.
	ErrRPC = errors.New("starknet: rpc error")

	// ErrCircuitOpen is returned without dialling when a network's endpoint
	// has failed repeatedly.
	ErrCircuitOpen = circuitbreaker.ErrOpen

	// ErrInvalidBlockID is returned by ParseBlockID.
	ErrInvalidBlockID = errors.New("starknet: invalid block id")
)

// Starknet JSON-RPC application error codes that mean "no such thing".
const (
	CodeContractNotFound  = 20
	CodeBlockNotFound     = 24
	CodeClassHashNotFound = 28
	CodeTxnHashNotFound   = 29
)

// RPCError is a failed JSON-RPC call. Code is zero for transport failures.
type RPCError struct {
	Network string
	Method  string
	Code    int
	Data    any
	Err     error
}

func (e *RPCError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s on %s: code %d: %v", e.Method, e.Network, e.Code, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Method, e.Network, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

func (e *RPCError) Is(target error) bool { return target == ErrRPC }

// ResponseError is a contract call that succeeded but returned words the
// caller could not decode. It matches felt.ErrUnrecognizedShape with
// errors.Is so range and shape failures from a contract are never mistaken
// for bad user input.
type ResponseError struct {
	Contract   felt.Address
	EntryPoint string
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.EntryPoint, e.Contract.Short(), e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

func (e *ResponseError) Is(target error) bool { return target == felt.ErrUnrecognizedShape }

// IsNotFound reports whether err is a provider "not found" error for a
// block, transaction, contract or class.
func IsNotFound(err error) bool {
	var re *RPCError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case CodeContractNotFound, CodeBlockNotFound, CodeClassHashNotFound, CodeTxnHashNotFound:
		return true
	}
	return false
}

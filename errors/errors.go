// Copyright 2026 The xdeps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines the error kinds raised by the xdeps engine.
//
// Every kind wraps the standard library errors package the way
// cuelang.org/go/cue/errors layers its Error type over errors.New: each kind
// is a concrete struct implementing error, and callers compare kinds with
// errors.Is/errors.As rather than string matching.
package errors

import (
	"errors"
	"fmt"
)

// New is a convenience wrapper for errors.New. It does not return a kind
// defined in this package.
func New(msg string) error {
	return errors.New(msg)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain assignable to target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling Unwrap on err, if it has one.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// DuplicateLabelError is raised by Manager.Ref when a label is already bound
// to a container.
type DuplicateLabelError struct {
	Label string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("xdeps: label %q is already registered", e.Label)
}

// UnknownTaskError is raised by Manager.Unregister for an absent taskid.
type UnknownTaskError struct {
	TaskID any
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("xdeps: no task registered for id %v", e.TaskID)
}

// CycleError is raised by the topological sort when a cycle prevents it
// from producing a total order. Path lists the nodes of the cycle in the
// order they were encountered, starting and ending on the same node.
type CycleError struct {
	Path []any
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("xdeps: cycle detected: %v", e.Path)
}

// MissingKeyError is raised when a non-default Item reference is evaluated
// against an absent key.
type MissingKeyError struct {
	Key any
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("xdeps: missing key %v", e.Key)
}

// EvaluationError wraps a failure that occurred while running a task or
// evaluating an expression, identified by the target/taskid that failed.
type EvaluationError struct {
	TaskID any
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("xdeps: evaluating %v: %s", e.TaskID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// ErrDomain names an arithmetic domain failure (e.g. division by zero).
// BinOp/Builtin evaluation never returns it: a domain failure yields a NaN
// value directly, and no code in the engine returns or checks ErrDomain.
var ErrDomain = errors.New("xdeps: arithmetic domain error")

/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package reconciler runs a reconciliation as a chain of small handlers
// sharing one context.
package reconciler

import (
	"context"
	"fmt"
	"strings"
)

// ReconcileContext holds shared state between handlers during reconciliation
type ReconcileContext[T any] struct {
	// Resource is the state being reconciled
	Resource T

	// Done stops the chain after the current handler
	Done bool

	// Steps lists the handlers that ran, in order
	Steps []string
}

// Handler processes a single step in the reconciliation chain
type Handler[T any] interface {
	// Handle processes the reconciliation step.
	// If an error is returned, the chain stops and the error is propagated.
	// Setting rc.Done stops the chain without an error.
	Handle(ctx context.Context, rc *ReconcileContext[T]) error
}

// Named is implemented by handlers that report their own step name.
type Named interface {
	Name() string
}

// Chain executes handlers in sequence
type Chain[T any] struct {
	handlers []Handler[T]
}

// NewChain creates a new handler chain with the given handlers
func NewChain[T any](handlers ...Handler[T]) *Chain[T] {
	return &Chain[T]{handlers: handlers}
}

// Execute runs all handlers in sequence until one errors or marks the
// context done. The context is not reset, so a second chain can continue
// from where the first one stopped once Done is cleared.
func (c *Chain[T]) Execute(ctx context.Context, rc *ReconcileContext[T]) error {
	for _, h := range c.handlers {
		rc.Steps = append(rc.Steps, StepName(h))
		if err := h.Handle(ctx, rc); err != nil {
			return fmt.Errorf("%s: %w", StepName(h), err)
		}
		if rc.Done {
			return nil
		}
	}
	return nil
}

// Len returns the number of handlers in the chain
func (c *Chain[T]) Len() int {
	return len(c.handlers)
}

// StepName returns the step name of h: its Name() when it has one, else
// its type name without package and "Handler" suffix.
func StepName(h any) string {
	if n, ok := h.(Named); ok {
		return n.Name()
	}
	name := fmt.Sprintf("%T", h)
	name = name[strings.LastIndex(name, ".")+1:]
	return strings.TrimSuffix(name, "Handler")
}

// HandlerFunc is a function adapter for Handler interface
type HandlerFunc[T any] func(ctx context.Context, rc *ReconcileContext[T]) error

// Handle implements Handler interface
func (f HandlerFunc[T]) Handle(ctx context.Context, rc *ReconcileContext[T]) error {
	return f(ctx, rc)
}

// NamedFunc wraps fn as a handler reporting name as its step.
func NamedFunc[T any](name string, fn HandlerFunc[T]) Handler[T] {
	return namedFunc[T]{name: name, fn: fn}
}

type namedFunc[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (n namedFunc[T]) Name() string { return n.name }

func (n namedFunc[T]) Handle(ctx context.Context, rc *ReconcileContext[T]) error {
	return n.fn(ctx, rc)
}

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

// Package binding reconciles one DNS binding against the directory. Each
// step of the create/update and delete paths is a reconciler.Handler.
package binding

import (
	"context"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/reconciler"
)

// Status is what gets written back to the source object.
type Status struct {
	Phase              string
	Message            string
	ObservedGeneration int64
	RecordName         string
}

// Target is the source object as seen by the engine. Implementations
// persist finalizers and status through the Kubernetes API.
type Target interface {
	HasFinalizer() bool
	AddFinalizer(ctx context.Context) error
	RemoveFinalizer(ctx context.Context) error
	PatchStatus(ctx context.Context, status Status) error
}

// State is shared by the handlers of one attempt.
type State struct {
	Request domaindns.BindingRequest
	Target  Target

	// DesiredIP is the Service address, set by ResolveIPHandler.
	DesiredIP string
	// Directory is the authenticated session, set by AuthenticateHandler.
	Directory domaindns.Directory
	// Record is the current directory record; nil means not present.
	Record *domaindns.RecordState

	Outcome domaindns.Outcome
}

// Context is the reconcile context passed between handlers.
type Context = reconciler.ReconcileContext[*State]

// finish records the outcome and stops the chain.
func finish(rc *Context, outcome domaindns.Outcome) {
	rc.Resource.Outcome = outcome
	rc.Done = true
}

// classified turns a failed call into Retry or Failed. Callers handle
// ActionAbsent themselves before calling it.
func classified(c domaindns.Classifier, op domaindns.Operation, err error) domaindns.Outcome {
	decision := c.Classify(op, err)
	if decision.Action == domaindns.ActionFatal {
		return domaindns.Failed(err)
	}
	return domaindns.Retry(decision.Delay, err)
}

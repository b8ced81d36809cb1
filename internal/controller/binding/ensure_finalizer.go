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

package binding

import (
	"context"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// EnsureFinalizerHandler adds the finalizer once the record is known to
// exist. The update triggers one more, expected, reconciliation.
type EnsureFinalizerHandler struct{}

// NewEnsureFinalizerHandler creates a new EnsureFinalizerHandler
func NewEnsureFinalizerHandler() *EnsureFinalizerHandler {
	return &EnsureFinalizerHandler{}
}

// Handle implements reconciler.Handler
func (h *EnsureFinalizerHandler) Handle(ctx context.Context, rc *Context) error {
	state := rc.Resource
	switch state.Outcome.Kind {
	case domaindns.OutcomeCreated, domaindns.OutcomeUpdated, domaindns.OutcomeUnchanged:
	default:
		return nil
	}
	if state.Target.HasFinalizer() {
		return nil
	}

	logf.FromContext(ctx).WithName("ensure-finalizer").Info("adding finalizer")
	return state.Target.AddFinalizer(ctx)
}

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

// PrepareDeleteHandler decides whether the delete path needs the directory.
type PrepareDeleteHandler struct{}

// NewPrepareDeleteHandler creates a new PrepareDeleteHandler
func NewPrepareDeleteHandler() *PrepareDeleteHandler {
	return &PrepareDeleteHandler{}
}

// Handle implements reconciler.Handler
func (h *PrepareDeleteHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("prepare-delete")
	state := rc.Resource

	if !state.Target.HasFinalizer() {
		finish(rc, domaindns.Deleted("no finalizer, nothing to clean up"))
		return nil
	}

	if !state.Request.HasName() {
		log.Info("no dns name declared, releasing finalizer")
		if err := state.Target.RemoveFinalizer(ctx); err != nil {
			return err
		}
		finish(rc, domaindns.Deleted("no dns name declared"))
		return nil
	}

	// The finalizer stays: the record may exist and needs a human to fix the source.
	if err := state.Request.ValidateForDelete(); err != nil {
		log.Info("cannot locate record, keeping finalizer", "reason", err.Error())
		finish(rc, domaindns.Failed(err))
	}
	return nil
}

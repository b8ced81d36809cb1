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
	"fmt"

	logf "sigs.k8s.io/controller-runtime/pkg/log"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// DeleteRecordHandler removes the record and then the finalizer. A record
// that is already gone counts as deleted.
type DeleteRecordHandler struct {
	classifier domaindns.Classifier
}

// NewDeleteRecordHandler creates a new DeleteRecordHandler
func NewDeleteRecordHandler(classifier domaindns.Classifier) *DeleteRecordHandler {
	return &DeleteRecordHandler{classifier: classifier}
}

// Handle implements reconciler.Handler
func (h *DeleteRecordHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("delete-record")
	state := rc.Resource
	req := state.Request
	name := req.RelativeName()

	message := fmt.Sprintf("A record %s deleted", name)
	if err := state.Directory.Delete(ctx, req.Zone, name); err != nil {
		if h.classifier.Classify(domaindns.OpDelete, err).Action != domaindns.ActionAbsent {
			finish(rc, classified(h.classifier, domaindns.OpDelete, err))
			return nil
		}
		message = fmt.Sprintf("A record %s already absent", name)
	}

	log.Info("record removed, releasing finalizer", "zone", req.Zone, "name", name)
	if err := state.Target.RemoveFinalizer(ctx); err != nil {
		return err
	}
	finish(rc, domaindns.Deleted(message))
	return nil
}

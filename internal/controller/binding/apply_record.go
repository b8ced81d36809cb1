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

	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// ApplyRecordHandler issues the minimal mutation: nothing when the desired
// address is already bound, delete then add when other values are bound,
// add when the record is absent.
type ApplyRecordHandler struct {
	classifier domaindns.Classifier
}

// NewApplyRecordHandler creates a new ApplyRecordHandler
func NewApplyRecordHandler(classifier domaindns.Classifier) *ApplyRecordHandler {
	return &ApplyRecordHandler{classifier: classifier}
}

// Handle implements reconciler.Handler
func (h *ApplyRecordHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("apply-record")
	state := rc.Resource
	req := state.Request

	ep, err := adapter.DesiredEndpoint(req, state.DesiredIP)
	if err != nil {
		finish(rc, domaindns.Failed(err))
		return nil
	}
	name := req.RelativeName()
	value := adapter.RecordValue(ep)

	if state.Record.Contains(state.DesiredIP) {
		finish(rc, domaindns.Unchanged(fmt.Sprintf("A record present %s", state.DesiredIP)))
		return nil
	}

	if state.Record != nil {
		// Not atomic: if add fails below, the next attempt finds no record and creates it.
		log.Info("replacing record values", "zone", req.Zone, "name", name,
			"current", state.Record.Values, "desired", state.DesiredIP)
		if err := state.Directory.Delete(ctx, req.Zone, name); err != nil {
			if h.classifier.Classify(domaindns.OpDelete, err).Action != domaindns.ActionAbsent {
				finish(rc, classified(h.classifier, domaindns.OpDelete, err))
				return nil
			}
		}
		if err := state.Directory.Add(ctx, req.Zone, name, value); err != nil {
			finish(rc, classified(h.classifier, domaindns.OpAdd, err))
			return nil
		}
		finish(rc, domaindns.Updated(fmt.Sprintf("A record updated to %s", state.DesiredIP)))
		return nil
	}

	log.Info("creating record", "zone", req.Zone, "name", name, "value", state.DesiredIP)
	if err := state.Directory.Add(ctx, req.Zone, name, value); err != nil {
		finish(rc, classified(h.classifier, domaindns.OpAdd, err))
		return nil
	}
	finish(rc, domaindns.Created(fmt.Sprintf("A record created %s", state.DesiredIP)))
	return nil
}

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

// LookupRecordHandler reads the current record. Absence is not an error.
type LookupRecordHandler struct {
	classifier domaindns.Classifier
}

// NewLookupRecordHandler creates a new LookupRecordHandler
func NewLookupRecordHandler(classifier domaindns.Classifier) *LookupRecordHandler {
	return &LookupRecordHandler{classifier: classifier}
}

// Handle implements reconciler.Handler
func (h *LookupRecordHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("lookup-record")
	req := rc.Resource.Request
	name := req.RelativeName()

	record, err := rc.Resource.Directory.Show(ctx, req.Zone, name)
	if err != nil {
		if h.classifier.Classify(domaindns.OpShow, err).Action == domaindns.ActionAbsent {
			log.V(1).Info("record not present", "zone", req.Zone, "name", name)
			rc.Resource.Record = nil
			return nil
		}
		finish(rc, classified(h.classifier, domaindns.OpShow, err))
		return nil
	}

	log.V(1).Info("record present", "zone", req.Zone, "name", name, "values", record.Values)
	rc.Resource.Record = record
	return nil
}

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

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// ReportStatusHandler writes the outcome back to the source object.
// Retries leave the status alone, and so do deletions since the object is
// about to disappear.
type ReportStatusHandler struct{}

// NewReportStatusHandler creates a new ReportStatusHandler
func NewReportStatusHandler() *ReportStatusHandler {
	return &ReportStatusHandler{}
}

// Handle implements reconciler.Handler
func (h *ReportStatusHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("report-status")
	state := rc.Resource

	var phase string
	switch state.Outcome.Kind {
	case domaindns.OutcomeCreated, domaindns.OutcomeUpdated, domaindns.OutcomeUnchanged:
		phase = ipadnsv1alpha1.PhaseSynced
	case domaindns.OutcomeFailed:
		phase = ipadnsv1alpha1.PhaseFailed
	default:
		return nil
	}

	status := Status{
		Phase:              phase,
		Message:            state.Outcome.Message,
		ObservedGeneration: state.Request.Generation,
		RecordName:         state.Request.RelativeName(),
	}

	log.V(1).Info("updating status", "phase", status.Phase, "message", status.Message)
	if err := state.Target.PatchStatus(ctx, status); err != nil {
		log.Error(err, "failed to update status")
		return err
	}
	return nil
}

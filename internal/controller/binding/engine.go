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
	"github.com/golgoth31/ipa-dns-operator/internal/metrics"
	"github.com/golgoth31/ipa-dns-operator/internal/reconciler"
)

// Deps are the collaborators of the engine.
type Deps struct {
	Resolver    domaindns.IPResolver
	Credentials domaindns.CredentialProvider
	Sessions    domaindns.SessionManager
	Classifier  domaindns.Classifier
}

// Engine runs the create/update and delete paths of a binding. At most one
// attempt per source key is in flight at any time.
//
// Two sources bound to the same (zone, name) are not serialized against
// each other and may interleave their directory calls.
type Engine struct {
	locks          reconciler.KeyedMutex
	sync           *reconciler.Chain[*State]
	syncReport     *reconciler.Chain[*State]
	finalize       *reconciler.Chain[*State]
	finalizeReport *reconciler.Chain[*State]
}

// NewEngine creates an Engine with the handler chains wired to deps.
func NewEngine(deps Deps) *Engine {
	authenticate := NewAuthenticateHandler(deps.Credentials, deps.Sessions, deps.Classifier)

	return &Engine{
		sync: reconciler.NewChain[*State](
			NewValidateHandler(),
			NewResolveIPHandler(deps.Resolver, deps.Classifier),
			authenticate,
			NewLookupRecordHandler(deps.Classifier),
			NewApplyRecordHandler(deps.Classifier),
		),
		finalize: reconciler.NewChain[*State](
			NewPrepareDeleteHandler(),
			authenticate,
			NewDeleteRecordHandler(deps.Classifier),
		),
		syncReport: reconciler.NewChain[*State](
			NewReportStatusHandler(),
			NewEnsureFinalizerHandler(),
		),
		finalizeReport: reconciler.NewChain[*State](
			NewReportStatusHandler(),
		),
	}
}

// Sync brings the directory record in line with req. The returned error is
// only set for Kubernetes API failures while writing status or finalizers.
func (e *Engine) Sync(ctx context.Context, req domaindns.BindingRequest, target Target) (domaindns.Outcome, error) {
	return e.run(ctx, "sync", e.sync, e.syncReport, req, target)
}

// Finalize removes the record of a source being deleted and releases its
// finalizer once the record is confirmed absent.
func (e *Engine) Finalize(ctx context.Context, req domaindns.BindingRequest, target Target) (domaindns.Outcome, error) {
	return e.run(ctx, "finalize", e.finalize, e.finalizeReport, req, target)
}

func (e *Engine) run(
	ctx context.Context,
	path string,
	chain, report *reconciler.Chain[*State],
	req domaindns.BindingRequest,
	target Target,
) (domaindns.Outcome, error) {
	key := req.Source.String()
	unlock := e.locks.Lock(key)
	defer unlock()

	log := logf.FromContext(ctx).WithName("binding").WithValues("source", key, "path", path)
	ctx = logf.IntoContext(ctx, log)

	rc := &Context{Resource: &State{Request: req, Target: target}}

	if err := chain.Execute(ctx, rc); err != nil {
		log.Error(err, "reconciliation failed")
		return domaindns.Outcome{}, err
	}
	if rc.Resource.Outcome.IsZero() {
		// Every chain ends in a handler that decides; reaching here is a wiring bug.
		rc.Resource.Outcome = domaindns.Unchanged("nothing to do")
	}

	rc.Done = false
	if err := report.Execute(ctx, rc); err != nil {
		return rc.Resource.Outcome, err
	}

	outcome := rc.Resource.Outcome
	metrics.ObserveOutcome(req.Source.Kind(), string(outcome.Kind))
	log.Info("reconciliation completed", "outcome", outcome.Kind, "message", outcome.Message,
		"requeueAfter", outcome.Delay)
	log.V(1).Info("steps", "steps", rc.Steps)
	return outcome, nil
}

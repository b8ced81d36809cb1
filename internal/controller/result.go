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

package controller

import (
	ctrl "sigs.k8s.io/controller-runtime"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// resultFor maps an engine outcome to a controller result. Only retries
// requeue; failed bindings wait for the next change of their source.
func resultFor(outcome domaindns.Outcome) ctrl.Result {
	if outcome.Kind == domaindns.OutcomeRetry {
		return ctrl.Result{RequeueAfter: outcome.Delay}
	}
	return ctrl.Result{}
}

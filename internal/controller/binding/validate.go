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

// ValidateHandler rejects bindings that cannot be reconciled before any
// remote call is made.
type ValidateHandler struct{}

// NewValidateHandler creates a new ValidateHandler
func NewValidateHandler() *ValidateHandler {
	return &ValidateHandler{}
}

// Handle implements reconciler.Handler
func (h *ValidateHandler) Handle(ctx context.Context, rc *Context) error {
	if err := rc.Resource.Request.Validate(); err != nil {
		logf.FromContext(ctx).WithName("validate").Info("binding rejected", "reason", err.Error())
		finish(rc, domaindns.Failed(err))
	}
	return nil
}

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

// AuthenticateHandler opens a fresh directory session for this attempt.
type AuthenticateHandler struct {
	credentials domaindns.CredentialProvider
	sessions    domaindns.SessionManager
	classifier  domaindns.Classifier
}

// NewAuthenticateHandler creates a new AuthenticateHandler
func NewAuthenticateHandler(
	credentials domaindns.CredentialProvider,
	sessions domaindns.SessionManager,
	classifier domaindns.Classifier,
) *AuthenticateHandler {
	return &AuthenticateHandler{credentials: credentials, sessions: sessions, classifier: classifier}
}

// Handle implements reconciler.Handler
func (h *AuthenticateHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("authenticate")

	creds, err := h.credentials.Credentials(ctx)
	if err != nil {
		log.Error(err, "failed to load directory credentials")
		finish(rc, classified(h.classifier, domaindns.OpCredentials, err))
		return nil
	}

	dir, err := h.sessions.OpenSession(ctx, creds)
	if err != nil {
		log.Error(err, "directory login failed")
		finish(rc, classified(h.classifier, domaindns.OpLogin, err))
		return nil
	}

	rc.Resource.Directory = dir
	return nil
}

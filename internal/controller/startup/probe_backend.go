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

// Package startup holds runnables executed once when the manager starts.
package startup

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// BackendProbeRunnable logs in to the directory once at startup so that a
// wrong server URL or credential Secret shows up in the logs before the
// first binding is reconciled. Failures are logged and never stop the manager.
type BackendProbeRunnable struct {
	credentials domaindns.CredentialProvider
	sessions    domaindns.SessionManager
	server      string
	log         logr.Logger
}

// NewBackendProbeRunnable creates a new BackendProbeRunnable.
func NewBackendProbeRunnable(
	credentials domaindns.CredentialProvider,
	sessions domaindns.SessionManager,
	server string,
) *BackendProbeRunnable {
	return &BackendProbeRunnable{
		credentials: credentials,
		sessions:    sessions,
		server:      server,
		log:         ctrl.Log.WithName("probe-backend"),
	}
}

// Start implements manager.Runnable. It runs once and always returns nil.
func (r *BackendProbeRunnable) Start(ctx context.Context) error {
	log := r.log.WithValues("server", r.server)

	creds, err := r.credentials.Credentials(ctx)
	if err != nil {
		log.Error(err, "failed to read directory credentials")
		return nil
	}

	start := time.Now()
	if _, err := r.sessions.OpenSession(ctx, creds); err != nil {
		log.Error(err, "directory login failed", "username", creds.Username)
		return nil
	}

	log.Info("directory login succeeded", "username", creds.Username, "duration", time.Since(start))
	return nil
}

// NeedLeaderElection returns true so this only runs on the leader.
func (r *BackendProbeRunnable) NeedLeaderElection() bool {
	return true
}

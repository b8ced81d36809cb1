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

// ResolveIPHandler looks up the address the record must point to.
// A Service without an address yet leaves finalizer and status untouched.
type ResolveIPHandler struct {
	resolver   domaindns.IPResolver
	classifier domaindns.Classifier
}

// NewResolveIPHandler creates a new ResolveIPHandler
func NewResolveIPHandler(resolver domaindns.IPResolver, classifier domaindns.Classifier) *ResolveIPHandler {
	return &ResolveIPHandler{resolver: resolver, classifier: classifier}
}

// Handle implements reconciler.Handler
func (h *ResolveIPHandler) Handle(ctx context.Context, rc *Context) error {
	log := logf.FromContext(ctx).WithName("resolve-ip")
	req := rc.Resource.Request

	ip, err := h.resolver.ResolveIP(ctx, req.ServiceNamespace, req.ServiceName)
	if err != nil {
		finish(rc, classified(h.classifier, domaindns.OpResolveIP, err))
		return nil
	}
	if ip == "" {
		log.V(1).Info("service has no external address yet",
			"service", req.ServiceNamespace+"/"+req.ServiceName)
		finish(rc, classified(h.classifier, domaindns.OpResolveIP,
			fmt.Errorf("service %s/%s: %w", req.ServiceNamespace, req.ServiceName, domaindns.ErrNoAddress)))
		return nil
	}

	rc.Resource.DesiredIP = ip
	return nil
}

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

// Package resolver finds the external address of a LoadBalancer Service.
package resolver

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// ServiceIPResolver implements domaindns.IPResolver with the first
// status.loadBalancer.ingress entry of a Service.
type ServiceIPResolver struct {
	reader client.Reader
}

var _ domaindns.IPResolver = (*ServiceIPResolver)(nil)

// NewServiceIPResolver creates a resolver reading Services through reader.
func NewServiceIPResolver(reader client.Reader) *ServiceIPResolver {
	return &ServiceIPResolver{reader: reader}
}

// ResolveIP returns the IP of the first ingress entry.
// A missing Service, an empty ingress list or a hostname-only entry yields
// "" and no error.
func (r *ServiceIPResolver) ResolveIP(ctx context.Context, namespace, name string) (string, error) {
	var svc corev1.Service
	if err := r.reader.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, &svc); err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get service %s/%s: %w", namespace, name, err)
	}

	return IngressAddress(&svc), nil
}

// IngressAddress returns the IP of the first ingress entry. Load balancers
// that only publish a hostname cannot back an A record and yield "".
func IngressAddress(svc *corev1.Service) string {
	ingress := svc.Status.LoadBalancer.Ingress
	if len(ingress) == 0 {
		return ""
	}
	return ingress[0].IP
}

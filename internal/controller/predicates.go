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
	"maps"
	"slices"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
)

// serviceAddressChanged passes Service events that can change the address
// published for a binding.
func serviceAddressChanged() predicate.Funcs {
	return predicate.Funcs{
		UpdateFunc: func(e event.UpdateEvent) bool {
			oldSvc, ok := e.ObjectOld.(*corev1.Service)
			if !ok {
				return false
			}
			newSvc, ok := e.ObjectNew.(*corev1.Service)
			if !ok {
				return false
			}
			return !slices.Equal(ingressAddresses(oldSvc), ingressAddresses(newSvc)) ||
				oldSvc.Spec.Type != newSvc.Spec.Type
		},
	}
}

// serviceBindingChanged passes Service events relevant to an annotated
// binding: its annotations, address, type, deletion or finalizers.
func serviceBindingChanged(keys adapter.Keys) predicate.Funcs {
	declared := func(svc *corev1.Service) map[string]string {
		out := map[string]string{}
		for _, k := range []string{keys.DNSName, keys.Zone, keys.TTL, keys.RecordType} {
			if v, ok := svc.Annotations[k]; ok {
				out[k] = v
			}
		}
		return out
	}

	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			svc, ok := e.Object.(*corev1.Service)
			return ok && (keys.Declares(svc) || hasFinalizer(svc))
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			oldSvc, ok := e.ObjectOld.(*corev1.Service)
			if !ok {
				return false
			}
			newSvc, ok := e.ObjectNew.(*corev1.Service)
			if !ok {
				return false
			}
			if !keys.Declares(oldSvc) && !keys.Declares(newSvc) && !hasFinalizer(newSvc) {
				return false
			}
			return !maps.Equal(declared(oldSvc), declared(newSvc)) ||
				!slices.Equal(ingressAddresses(oldSvc), ingressAddresses(newSvc)) ||
				oldSvc.Spec.Type != newSvc.Spec.Type ||
				!newSvc.DeletionTimestamp.Equal(oldSvc.DeletionTimestamp) ||
				!slices.Equal(oldSvc.Finalizers, newSvc.Finalizers)
		},
		DeleteFunc: func(event.DeleteEvent) bool {
			return false
		},
		GenericFunc: func(e event.GenericEvent) bool {
			svc, ok := e.Object.(*corev1.Service)
			return ok && keys.Declares(svc)
		},
	}
}

func ingressAddresses(svc *corev1.Service) []string {
	out := make([]string, 0, len(svc.Status.LoadBalancer.Ingress))
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		out = append(out, ing.IP+"|"+ing.Hostname)
	}
	return out
}

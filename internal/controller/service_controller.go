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
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/binding"
)

// ServiceReconciler reconciles LoadBalancer Services that declare a DNS
// binding through annotations.
type ServiceReconciler struct {
	client.Client
	Scheme *runtime.Scheme
	engine *binding.Engine
	keys   adapter.Keys
}

// NewServiceReconciler creates a new ServiceReconciler reading annotations under keys
func NewServiceReconciler(c client.Client, scheme *runtime.Scheme, engine *binding.Engine, keys adapter.Keys) *ServiceReconciler {
	return &ServiceReconciler{
		Client: c,
		Scheme: scheme,
		engine: engine,
		keys:   keys,
	}
}

// +kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups="",resources=services/finalizers,verbs=update

// Reconcile handles a Service binding. A Service that stops being a
// LoadBalancer or drops its annotations while still holding the finalizer
// has its record removed.
func (r *ServiceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	var svc corev1.Service
	if err := r.Get(ctx, req.NamespacedName, &svc); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	bound := svc.Spec.Type == corev1.ServiceTypeLoadBalancer && r.keys.Declares(&svc)
	deleting := !svc.DeletionTimestamp.IsZero()

	if !deleting && !bound && !hasFinalizer(&svc) {
		return ctrl.Result{}, nil
	}

	if deleting || !bound {
		request := adapter.FromServiceForDelete(&svc, r.keys)
		log.Info("finalizing Service binding", "name", svc.Name, "namespace", svc.Namespace,
			"deleting", deleting, "dnsName", request.TargetName)
		outcome, err := r.engine.Finalize(ctx, request, newServiceTarget(r.Client, &svc, r.keys, request))
		if err != nil {
			return ctrl.Result{}, err
		}
		return resultFor(outcome), nil
	}

	request := adapter.FromService(&svc, r.keys)
	log.V(1).Info("reconciling Service binding", "name", svc.Name, "namespace", svc.Namespace)
	outcome, err := r.engine.Sync(ctx, request, newServiceTarget(r.Client, &svc, r.keys, request))
	if err != nil {
		return ctrl.Result{}, err
	}
	return resultFor(outcome), nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ServiceReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&corev1.Service{}, builder.WithPredicates(serviceBindingChanged(r.keys))).
		Named("service").
		Complete(r)
}

func hasFinalizer(obj client.Object) bool {
	return controllerutil.ContainsFinalizer(obj, ipadnsv1alpha1.FinalizerName)
}

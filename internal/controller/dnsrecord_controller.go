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
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/binding"
)

const (
	// IndexFieldServiceRef is the index field name for looking up DNSRecords by Service
	IndexFieldServiceRef = "spec.serviceRef"
)

// ServiceRefIndexer indexes DNSRecords by "namespace/name" of their Service.
func ServiceRefIndexer(o client.Object) []string {
	rec, ok := o.(*ipadnsv1alpha1.DNSRecord)
	if !ok || rec.Spec.ServiceName == "" {
		return nil
	}
	return []string{rec.ServiceNamespaceOrDefault() + "/" + rec.Spec.ServiceName}
}

// DNSRecordReconciler reconciles a DNSRecord object
type DNSRecordReconciler struct {
	client.Client
	Scheme *runtime.Scheme
	engine *binding.Engine
}

// NewDNSRecordReconciler creates a new DNSRecordReconciler driving engine
func NewDNSRecordReconciler(c client.Client, scheme *runtime.Scheme, engine *binding.Engine) *DNSRecordReconciler {
	return &DNSRecordReconciler{
		Client: c,
		Scheme: scheme,
		engine: engine,
	}
}

// +kubebuilder:rbac:groups=ipadns.my.domain,resources=dnsrecords,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=ipadns.my.domain,resources=dnsrecords/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=ipadns.my.domain,resources=dnsrecords/finalizers,verbs=update
// +kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch

// Reconcile syncs the directory record of a DNSRecord, or removes it when
// the DNSRecord is being deleted.
func (r *DNSRecordReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	var record ipadnsv1alpha1.DNSRecord
	if err := r.Get(ctx, req.NamespacedName, &record); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	request := adapter.FromDNSRecord(&record)
	target := newDNSRecordTarget(r.Client, &record)

	if !record.DeletionTimestamp.IsZero() {
		log.Info("finalizing DNSRecord", "name", record.Name, "namespace", record.Namespace)
		outcome, err := r.engine.Finalize(ctx, request, target)
		if err != nil {
			return ctrl.Result{}, err
		}
		return resultFor(outcome), nil
	}

	log.V(1).Info("reconciling DNSRecord", "name", record.Name, "namespace", record.Namespace)
	outcome, err := r.engine.Sync(ctx, request, target)
	if err != nil {
		return ctrl.Result{}, err
	}
	return resultFor(outcome), nil
}

// SetupWithManager sets up the controller with the Manager. A Service
// address change re-syncs every DNSRecord bound to that Service.
func (r *DNSRecordReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&ipadnsv1alpha1.DNSRecord{}).
		Watches(&corev1.Service{},
			handler.EnqueueRequestsFromMapFunc(r.recordsForService),
			builder.WithPredicates(serviceAddressChanged()),
		).
		Named("dnsrecord").
		Complete(r)
}

func (r *DNSRecordReconciler) recordsForService(ctx context.Context, obj client.Object) []reconcile.Request {
	svc, ok := obj.(*corev1.Service)
	if !ok {
		return nil
	}

	var list ipadnsv1alpha1.DNSRecordList
	if err := r.List(ctx, &list,
		client.MatchingFields{IndexFieldServiceRef: svc.Namespace + "/" + svc.Name},
	); err != nil {
		logf.FromContext(ctx).Error(err, "failed to list DNSRecords for Service",
			"service", svc.Namespace+"/"+svc.Name)
		return nil
	}

	requests := make([]reconcile.Request, 0, len(list.Items))
	for _, rec := range list.Items {
		requests = append(requests, reconcile.Request{
			NamespacedName: types.NamespacedName{
				Name:      rec.Name,
				Namespace: rec.Namespace,
			},
		})
	}
	return requests
}

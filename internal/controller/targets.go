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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/binding"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

const (
	// ConditionTypeReady indicates the DNS record matches the Service address
	ConditionTypeReady = "Ready"
)

// finalizers adds and removes the binding finalizer with an optimistic lock
// so that a concurrent writer is never overwritten.
type finalizers struct {
	client client.Client
	obj    client.Object
}

func (f finalizers) HasFinalizer() bool {
	return hasFinalizer(f.obj)
}

func (f finalizers) AddFinalizer(ctx context.Context) error {
	base := f.obj.DeepCopyObject().(client.Object)
	if !controllerutil.AddFinalizer(f.obj, ipadnsv1alpha1.FinalizerName) {
		return nil
	}
	return f.client.Patch(ctx, f.obj, client.MergeFromWithOptions(base, client.MergeFromWithOptimisticLock{}))
}

func (f finalizers) RemoveFinalizer(ctx context.Context) error {
	base := f.obj.DeepCopyObject().(client.Object)
	if !controllerutil.RemoveFinalizer(f.obj, ipadnsv1alpha1.FinalizerName) {
		return nil
	}
	return client.IgnoreNotFound(
		f.client.Patch(ctx, f.obj, client.MergeFromWithOptions(base, client.MergeFromWithOptimisticLock{})))
}

// dnsRecordTarget writes status to the DNSRecord status subresource.
type dnsRecordTarget struct {
	finalizers
	record *ipadnsv1alpha1.DNSRecord
}

var _ binding.Target = (*dnsRecordTarget)(nil)

func newDNSRecordTarget(c client.Client, record *ipadnsv1alpha1.DNSRecord) *dnsRecordTarget {
	return &dnsRecordTarget{finalizers: finalizers{client: c, obj: record}, record: record}
}

func (t *dnsRecordTarget) PatchStatus(ctx context.Context, status binding.Status) error {
	return retry.RetryOnConflict(retry.DefaultRetry, func() error {
		var latest ipadnsv1alpha1.DNSRecord
		if err := t.client.Get(ctx, client.ObjectKeyFromObject(t.record), &latest); err != nil {
			return err
		}

		now := metav1.Now()
		latest.Status.Phase = status.Phase
		latest.Status.Message = status.Message
		latest.Status.ObservedGeneration = status.ObservedGeneration
		latest.Status.RecordName = status.RecordName
		latest.Status.LastReconcileTime = &now
		setCondition(&latest.Status.Conditions, readyCondition(status, now))

		if err := t.client.Status().Update(ctx, &latest); err != nil {
			return err
		}
		latest.DeepCopyInto(t.record)
		return nil
	})
}

// serviceTarget writes status as annotations on the Service. A Synced
// status also records the applied name and zone, which the finalizer
// release clears.
type serviceTarget struct {
	finalizers
	service *corev1.Service
	keys    adapter.Keys
	request domaindns.BindingRequest
}

var _ binding.Target = (*serviceTarget)(nil)

func newServiceTarget(c client.Client, svc *corev1.Service, keys adapter.Keys, req domaindns.BindingRequest) *serviceTarget {
	return &serviceTarget{finalizers: finalizers{client: c, obj: svc}, service: svc, keys: keys, request: req}
}

func (t *serviceTarget) PatchStatus(ctx context.Context, status binding.Status) error {
	base := t.service.DeepCopy()
	if t.service.Annotations == nil {
		t.service.Annotations = map[string]string{}
	}
	for k, v := range t.keys.StatusAnnotations(status.Phase, status.Message, status.ObservedGeneration) {
		t.service.Annotations[k] = v
	}
	if status.Phase == ipadnsv1alpha1.PhaseSynced {
		for k, v := range t.keys.AppliedAnnotations(t.request) {
			t.service.Annotations[k] = v
		}
	}
	return t.client.Patch(ctx, t.service, client.MergeFrom(base))
}

func (t *serviceTarget) RemoveFinalizer(ctx context.Context) error {
	base := t.service.DeepCopy()
	if !controllerutil.RemoveFinalizer(t.service, ipadnsv1alpha1.FinalizerName) {
		return nil
	}
	delete(t.service.Annotations, t.keys.AppliedDNSName)
	delete(t.service.Annotations, t.keys.AppliedZone)
	return client.IgnoreNotFound(
		t.client.Patch(ctx, t.service, client.MergeFromWithOptions(base, client.MergeFromWithOptimisticLock{})))
}

func readyCondition(status binding.Status, now metav1.Time) metav1.Condition {
	cond := metav1.Condition{
		Type:               ConditionTypeReady,
		Status:             metav1.ConditionTrue,
		Reason:             "RecordSynced",
		Message:            status.Message,
		ObservedGeneration: status.ObservedGeneration,
		LastTransitionTime: now,
	}
	if status.Phase != ipadnsv1alpha1.PhaseSynced {
		cond.Status = metav1.ConditionFalse
		cond.Reason = "ReconcileFailed"
	}
	return cond
}

// setCondition sets or updates a condition in the conditions slice
func setCondition(conditions *[]metav1.Condition, newCondition metav1.Condition) {
	if conditions == nil {
		return
	}

	for i, c := range *conditions {
		if c.Type == newCondition.Type {
			// Only update LastTransitionTime if status changed
			if c.Status != newCondition.Status {
				(*conditions)[i] = newCondition
			} else {
				newCondition.LastTransitionTime = c.LastTransitionTime
				(*conditions)[i] = newCondition
			}
			return
		}
	}

	*conditions = append(*conditions, newCondition)
}

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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/event"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
)

var _ = Describe("Service Controller", func() {
	var (
		ctx  context.Context
		dir  *memDirectory
		keys adapter.Keys
		key  types.NamespacedName
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = newMemDirectory()
		keys = adapter.NewKeys(adapter.DefaultAnnotationPrefix)
		key = types.NamespacedName{Name: "web-lb", Namespace: testNamespace}
	})

	annotated := func() map[string]string {
		return map[string]string{
			keys.DNSName: "web.example.com.",
			keys.Zone:    "example.com",
			keys.TTL:     "600",
		}
	}

	reconcileOnce := func(c client.Client) ctrl.Result {
		r := NewServiceReconciler(c, testScheme, newTestEngine(c, dir), keys)
		res, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	It("publishes the address of an annotated LoadBalancer", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer(key.Name, "10.0.0.7", annotated()))

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.values("example.com", "web")).To(ConsistOf("10.0.0.7"))

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).To(ContainElement(ipadnsv1alpha1.FinalizerName))
		Expect(got.Annotations).To(HaveKeyWithValue(keys.Phase, ipadnsv1alpha1.PhaseSynced))
		Expect(got.Annotations).To(HaveKeyWithValue(keys.Message, "A record created 10.0.0.7"))
	})

	It("replaces a stale address", func() {
		dir.seed("example.com", "web", "10.0.0.1")
		c := newFakeClient(credentialsSecret(), loadBalancer(key.Name, "10.0.0.7", annotated()))

		reconcileOnce(c)
		Expect(dir.values("example.com", "web")).To(ConsistOf("10.0.0.7"))
		Expect(dir.Calls()).To(Equal([]string{
			"show example.com web",
			"delete example.com web",
			"add example.com web 10.0.0.7",
		}))
	})

	It("ignores Services that are not LoadBalancers", func() {
		svc := loadBalancer(key.Name, "", annotated())
		svc.Spec.Type = corev1.ServiceTypeClusterIP
		c := newFakeClient(credentialsSecret(), svc)

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(BeEmpty())
	})

	It("ignores LoadBalancers without binding annotations", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer(key.Name, "10.0.0.7", nil))

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(BeEmpty())
	})

	It("removes the record once the annotations are dropped", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer(key.Name, "10.0.0.7", annotated()))
		reconcileOnce(c)
		Expect(dir.values("example.com", "web")).To(ConsistOf("10.0.0.7"))

		var published corev1.Service
		Expect(c.Get(ctx, key, &published)).To(Succeed())
		delete(published.Annotations, keys.DNSName)
		delete(published.Annotations, keys.Zone)
		Expect(c.Update(ctx, &published)).To(Succeed())

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()[len(dir.Calls())-1]).To(Equal("delete example.com web"))
		Expect(dir.values("example.com", "web")).To(BeEmpty())

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).NotTo(ContainElement(ipadnsv1alpha1.FinalizerName))
		Expect(got.Annotations).NotTo(HaveKey(keys.AppliedDNSName))
		Expect(got.Annotations).NotTo(HaveKey(keys.AppliedZone))
	})

	It("records the applied name and zone with the published record", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer(key.Name, "10.0.0.7", annotated()))
		reconcileOnce(c)

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Annotations).To(HaveKeyWithValue(keys.AppliedDNSName, "web.example.com."))
		Expect(got.Annotations).To(HaveKeyWithValue(keys.AppliedZone, "example.com"))
	})

	It("deletes the last published name when the declared one was edited", func() {
		dir.seed("example.com", "web", "10.0.0.7")
		ann := annotated()
		ann[keys.DNSName] = "other.example.com."
		ann[keys.AppliedDNSName] = "web.example.com."
		ann[keys.AppliedZone] = "example.com"
		svc := loadBalancer(key.Name, "10.0.0.7", ann)
		svc.Finalizers = []string{ipadnsv1alpha1.FinalizerName}
		c := newFakeClient(credentialsSecret(), svc)
		Expect(c.Delete(ctx, svc.DeepCopy())).To(Succeed())

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(Equal([]string{"delete example.com web"}))
		Expect(dir.values("example.com", "web")).To(BeEmpty())
	})

	It("releases the finalizer when no name was ever published", func() {
		svc := loadBalancer(key.Name, "10.0.0.7", nil)
		svc.Finalizers = []string{ipadnsv1alpha1.FinalizerName}
		c := newFakeClient(credentialsSecret(), svc)

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(BeEmpty())

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).To(BeEmpty())
	})

	It("removes the record when the Service stops being a LoadBalancer", func() {
		dir.seed("example.com", "web", "10.0.0.7")
		svc := loadBalancer(key.Name, "", annotated())
		svc.Spec.Type = corev1.ServiceTypeClusterIP
		svc.Finalizers = []string{ipadnsv1alpha1.FinalizerName}
		c := newFakeClient(credentialsSecret(), svc)

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(Equal([]string{"delete example.com web"}))

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).To(BeEmpty())
	})

	It("removes the record when the Service is deleted", func() {
		dir.seed("example.com", "web", "10.0.0.7")
		svc := loadBalancer(key.Name, "10.0.0.7", annotated())
		svc.Finalizers = []string{ipadnsv1alpha1.FinalizerName}
		c := newFakeClient(credentialsSecret(), svc)
		Expect(c.Delete(ctx, svc.DeepCopy())).To(Succeed())

		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.values("example.com", "web")).To(BeEmpty())

		var got corev1.Service
		Expect(apierrors.IsNotFound(c.Get(ctx, key, &got))).To(BeTrue())
	})

	It("keeps the finalizer while the directory login is unavailable", func() {
		svc := loadBalancer(key.Name, "10.0.0.7", annotated())
		svc.Finalizers = []string{ipadnsv1alpha1.FinalizerName}
		c := newFakeClient(svc)
		Expect(c.Delete(ctx, svc.DeepCopy())).To(Succeed())

		res := reconcileOnce(c)
		Expect(res.RequeueAfter).To(Equal(30 * time.Second))

		var got corev1.Service
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).To(ContainElement(ipadnsv1alpha1.FinalizerName))
	})
})

var _ = Describe("Service predicates", func() {
	keys := adapter.NewKeys(adapter.DefaultAnnotationPrefix)

	svc := func(ip string, annotations map[string]string) *corev1.Service {
		return loadBalancer("web-lb", ip, annotations)
	}

	It("passes address changes to bound DNSRecords", func() {
		p := serviceAddressChanged()
		Expect(p.Update(event.UpdateEvent{ObjectOld: svc("", nil), ObjectNew: svc("10.0.0.1", nil)})).To(BeTrue())
		Expect(p.Update(event.UpdateEvent{ObjectOld: svc("10.0.0.1", nil), ObjectNew: svc("10.0.0.1", nil)})).To(BeFalse())
	})

	It("ignores Services without binding annotations", func() {
		p := serviceBindingChanged(keys)
		Expect(p.Create(event.CreateEvent{Object: svc("10.0.0.1", nil)})).To(BeFalse())
		Expect(p.Update(event.UpdateEvent{ObjectOld: svc("", nil), ObjectNew: svc("10.0.0.1", nil)})).To(BeFalse())
	})

	It("ignores status annotation writes", func() {
		p := serviceBindingChanged(keys)
		oldSvc := svc("10.0.0.1", map[string]string{keys.DNSName: "web", keys.Zone: "example.com"})
		newSvc := oldSvc.DeepCopy()
		newSvc.Annotations[keys.Phase] = ipadnsv1alpha1.PhaseSynced
		Expect(p.Update(event.UpdateEvent{ObjectOld: oldSvc, ObjectNew: newSvc})).To(BeFalse())
	})

	It("passes annotation, address and deletion changes", func() {
		p := serviceBindingChanged(keys)
		oldSvc := svc("10.0.0.1", map[string]string{keys.DNSName: "web", keys.Zone: "example.com"})

		renamed := oldSvc.DeepCopy()
		renamed.Annotations[keys.DNSName] = "www"
		Expect(p.Update(event.UpdateEvent{ObjectOld: oldSvc, ObjectNew: renamed})).To(BeTrue())

		moved := svc("10.0.0.2", oldSvc.Annotations)
		Expect(p.Update(event.UpdateEvent{ObjectOld: oldSvc, ObjectNew: moved})).To(BeTrue())

		deleting := oldSvc.DeepCopy()
		now := metav1.Now()
		deleting.DeletionTimestamp = &now
		Expect(p.Update(event.UpdateEvent{ObjectOld: oldSvc, ObjectNew: deleting})).To(BeTrue())

		unannotated := oldSvc.DeepCopy()
		unannotated.Annotations = nil
		Expect(p.Update(event.UpdateEvent{ObjectOld: oldSvc, ObjectNew: unannotated})).To(BeTrue())
	})
})

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

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
)

var _ = Describe("DNSRecord Controller", func() {
	var (
		ctx  context.Context
		dir  *memDirectory
		key  types.NamespacedName
		ttl  intstr.IntOrString
		spec ipadnsv1alpha1.DNSRecordSpec
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = newMemDirectory()
		key = types.NamespacedName{Name: "web", Namespace: testNamespace}
		ttl = intstr.FromInt32(300)
		spec = ipadnsv1alpha1.DNSRecordSpec{
			Name:        "web.example.com",
			Zone:        "example.com",
			Type:        "A",
			TTL:         &ttl,
			ServiceName: "web-lb",
		}
	})

	newRecord := func(finalizers ...string) *ipadnsv1alpha1.DNSRecord {
		return &ipadnsv1alpha1.DNSRecord{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace, Finalizers: finalizers},
			Spec:       spec,
		}
	}

	reconcileOnce := func(c client.Client) ctrl.Result {
		r := NewDNSRecordReconciler(c, testScheme, newTestEngine(c, dir))
		res, err := r.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	It("creates the record and reports Synced", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer("web-lb", "10.0.0.5", nil), newRecord())

		res := reconcileOnce(c)
		Expect(res).To(Equal(ctrl.Result{}))
		Expect(dir.values("example.com", "web")).To(ConsistOf("10.0.0.5"))

		var got ipadnsv1alpha1.DNSRecord
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Finalizers).To(ContainElement(ipadnsv1alpha1.FinalizerName))
		Expect(got.Status.Phase).To(Equal(ipadnsv1alpha1.PhaseSynced))
		Expect(got.Status.Message).To(Equal("A record created 10.0.0.5"))
		Expect(got.Status.RecordName).To(Equal("web"))
		Expect(got.Status.LastReconcileTime).NotTo(BeNil())
		Expect(got.Status.Conditions).To(HaveLen(1))
		Expect(got.Status.Conditions[0].Type).To(Equal(ConditionTypeReady))
		Expect(got.Status.Conditions[0].Status).To(Equal(metav1.ConditionTrue))
	})

	It("leaves an existing matching record untouched", func() {
		dir.seed("example.com", "web", "10.0.0.5")
		c := newFakeClient(credentialsSecret(), loadBalancer("web-lb", "10.0.0.5", nil), newRecord())

		reconcileOnce(c)
		Expect(dir.Calls()).To(Equal([]string{"show example.com web"}))

		var got ipadnsv1alpha1.DNSRecord
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Status.Message).To(Equal("A record present 10.0.0.5"))
	})

	It("requeues without touching status while the Service has no address", func() {
		c := newFakeClient(credentialsSecret(), loadBalancer("web-lb", "", nil), newRecord())

		res := reconcileOnce(c)
		Expect(res.RequeueAfter).To(Equal(15 * time.Second))
		Expect(dir.Calls()).To(BeEmpty())

		var got ipadnsv1alpha1.DNSRecord
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Status.Phase).To(BeEmpty())
		Expect(got.Finalizers).To(BeEmpty())
	})

	It("reports Failed for an invalid TTL and does not requeue", func() {
		bad := intstr.FromString("five minutes")
		spec.TTL = &bad
		c := newFakeClient(credentialsSecret(), loadBalancer("web-lb", "10.0.0.5", nil), newRecord())

		res := reconcileOnce(c)
		Expect(res).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(BeEmpty())

		var got ipadnsv1alpha1.DNSRecord
		Expect(c.Get(ctx, key, &got)).To(Succeed())
		Expect(got.Status.Phase).To(Equal(ipadnsv1alpha1.PhaseFailed))
		Expect(got.Status.Conditions[0].Status).To(Equal(metav1.ConditionFalse))
	})

	It("retries after 30s when the credentials Secret is missing", func() {
		c := newFakeClient(loadBalancer("web-lb", "10.0.0.5", nil), newRecord())

		res := reconcileOnce(c)
		Expect(res.RequeueAfter).To(Equal(30 * time.Second))
		Expect(dir.Calls()).To(BeEmpty())
	})

	It("deletes the record and releases the finalizer on deletion", func() {
		dir.seed("example.com", "web", "10.0.0.5")
		c := newFakeClient(credentialsSecret(), loadBalancer("web-lb", "10.0.0.5", nil),
			newRecord(ipadnsv1alpha1.FinalizerName))
		Expect(c.Delete(ctx, newRecord(ipadnsv1alpha1.FinalizerName))).To(Succeed())

		res := reconcileOnce(c)
		Expect(res).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(Equal([]string{"delete example.com web"}))
		Expect(dir.values("example.com", "web")).To(BeEmpty())

		var got ipadnsv1alpha1.DNSRecord
		err := c.Get(ctx, key, &got)
		Expect(apierrors.IsNotFound(err)).To(BeTrue())
	})

	It("ignores a DNSRecord that no longer exists", func() {
		c := newFakeClient(credentialsSecret())
		Expect(reconcileOnce(c)).To(Equal(ctrl.Result{}))
		Expect(dir.Calls()).To(BeEmpty())
	})

	It("maps a Service to the DNSRecords bound to it", func() {
		other := newRecord()
		other.Name = "other"
		other.Spec.ServiceName = "other-lb"
		c := newFakeClient(newRecord(), other)
		r := NewDNSRecordReconciler(c, testScheme, newTestEngine(c, dir))

		requests := r.recordsForService(ctx, loadBalancer("web-lb", "10.0.0.5", nil))
		Expect(requests).To(HaveLen(1))
		Expect(requests[0].NamespacedName).To(Equal(key))
	})
})

var _ = Describe("ServiceRefIndexer", func() {
	It("defaults the Service namespace to the DNSRecord namespace", func() {
		rec := &ipadnsv1alpha1.DNSRecord{
			ObjectMeta: metav1.ObjectMeta{Name: "a", Namespace: "apps"},
			Spec:       ipadnsv1alpha1.DNSRecordSpec{ServiceName: "lb"},
		}
		Expect(ServiceRefIndexer(rec)).To(Equal([]string{"apps/lb"}))

		rec.Spec.ServiceNamespace = "edge"
		Expect(ServiceRefIndexer(rec)).To(Equal([]string{"edge/lb"}))
	})

	It("skips records without a Service", func() {
		Expect(ServiceRefIndexer(&ipadnsv1alpha1.DNSRecord{})).To(BeNil())
	})
})

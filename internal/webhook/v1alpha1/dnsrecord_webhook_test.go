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

package v1alpha1

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

var _ = Describe("DNSRecord Webhook", func() {
	var (
		ctx       context.Context
		obj       *ipadnsv1alpha1.DNSRecord
		scheme    *runtime.Scheme
		defaulter DNSRecordCustomDefaulter
	)

	BeforeEach(func() {
		ctx = context.Background()
		ttl := intstr.FromInt32(300)
		obj = &ipadnsv1alpha1.DNSRecord{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "apps"},
			Spec: ipadnsv1alpha1.DNSRecordSpec{
				Name:        "web.example.com",
				Zone:        "example.com",
				TTL:         &ttl,
				ServiceName: "web-lb",
			},
		}
		scheme = runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
		defaulter = DNSRecordCustomDefaulter{}
	})

	validatorWith := func(objs ...client.Object) *DNSRecordCustomValidator {
		c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()
		return &DNSRecordCustomValidator{client: c}
	}

	loadBalancer := func() *corev1.Service {
		return &corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "web-lb", Namespace: "apps"},
			Spec:       corev1.ServiceSpec{Type: corev1.ServiceTypeLoadBalancer},
		}
	}

	Context("When creating DNSRecord under Defaulting Webhook", func() {
		It("Should default the type and the Service namespace", func() {
			Expect(defaulter.Default(ctx, obj)).To(Succeed())
			Expect(obj.Spec.Type).To(Equal(domaindns.RecordTypeA))
			Expect(obj.Spec.ServiceNamespace).To(Equal("apps"))
		})

		It("Should keep explicit values", func() {
			obj.Spec.Type = "CNAME"
			obj.Spec.ServiceNamespace = "edge"
			Expect(defaulter.Default(ctx, obj)).To(Succeed())
			Expect(obj.Spec.Type).To(Equal("CNAME"))
			Expect(obj.Spec.ServiceNamespace).To(Equal("edge"))
		})
	})

	Context("When creating or updating DNSRecord under Validating Webhook", func() {
		It("Should accept a valid record bound to a LoadBalancer", func() {
			warnings, err := validatorWith(loadBalancer()).ValidateCreate(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(BeEmpty())
		})

		DescribeTable("Should reject invalid specs",
			func(mutate func(*ipadnsv1alpha1.DNSRecord), want error) {
				mutate(obj)
				_, err := validatorWith(loadBalancer()).ValidateCreate(ctx, obj)
				Expect(err).To(MatchError(want))
			},
			Entry("missing name", func(r *ipadnsv1alpha1.DNSRecord) { r.Spec.Name = "" }, domaindns.ErrMissingName),
			Entry("missing zone", func(r *ipadnsv1alpha1.DNSRecord) { r.Spec.Zone = "" }, domaindns.ErrMissingZone),
			Entry("missing service", func(r *ipadnsv1alpha1.DNSRecord) { r.Spec.ServiceName = "" }, domaindns.ErrMissingService),
			Entry("non-A type", func(r *ipadnsv1alpha1.DNSRecord) { r.Spec.Type = "CNAME" }, domaindns.ErrUnsupportedRecordType),
			Entry("non-numeric ttl", func(r *ipadnsv1alpha1.DNSRecord) {
				ttl := intstr.FromString("1h")
				r.Spec.TTL = &ttl
			}, domaindns.ErrInvalidTTL),
			Entry("malformed name", func(r *ipadnsv1alpha1.DNSRecord) { r.Spec.Name = "bad..name" }, domaindns.ErrInvalidName),
		)

		It("Should warn when the Service does not exist yet", func() {
			warnings, err := validatorWith().ValidateCreate(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(ConsistOf(ContainSubstring("apps/web-lb not found")))
		})

		It("Should warn when the Service is not a LoadBalancer", func() {
			svc := loadBalancer()
			svc.Spec.Type = corev1.ServiceTypeClusterIP
			warnings, err := validatorWith(svc).ValidateCreate(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(warnings).To(ConsistOf(ContainSubstring("ClusterIP")))
		})

		It("Should fail when the Service lookup fails", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithInterceptorFuncs(interceptor.Funcs{
				Get: func(context.Context, client.WithWatch, client.ObjectKey, client.Object, ...client.GetOption) error {
					return errors.New("timeout")
				},
			}).Build()
			_, err := (&DNSRecordCustomValidator{client: c}).ValidateCreate(ctx, obj)
			Expect(err).To(MatchError(ContainSubstring("timeout")))
		})

		It("Should validate updates like creations", func() {
			obj.Spec.Zone = ""
			_, err := validatorWith(loadBalancer()).ValidateUpdate(ctx, obj.DeepCopy(), obj)
			Expect(err).To(MatchError(domaindns.ErrMissingZone))
		})

		It("Should let an object being deleted through", func() {
			obj.Spec.Zone = ""
			now := metav1.Now()
			obj.DeletionTimestamp = &now
			_, err := validatorWith().ValidateUpdate(ctx, obj.DeepCopy(), obj)
			Expect(err).NotTo(HaveOccurred())
		})

		It("Should always allow deletion", func() {
			_, err := validatorWith().ValidateDelete(ctx, obj)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

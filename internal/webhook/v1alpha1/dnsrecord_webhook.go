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
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/webhook/admission"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// log is for logging in this package.
var dnsrecordlog = logf.Log.WithName("dnsrecord-resource")

// SetupDNSRecordWebhookWithManager registers the webhook for DNSRecord in the manager.
func SetupDNSRecordWebhookWithManager(mgr ctrl.Manager) error {
	return ctrl.NewWebhookManagedBy(mgr, &ipadnsv1alpha1.DNSRecord{}).
		WithValidator(&DNSRecordCustomValidator{client: mgr.GetClient()}).
		WithDefaulter(&DNSRecordCustomDefaulter{}).
		Complete()
}

// +kubebuilder:webhook:path=/mutate-ipadns-my-domain-v1alpha1-dnsrecord,mutating=true,failurePolicy=fail,sideEffects=None,groups=ipadns.my.domain,resources=dnsrecords,verbs=create;update,versions=v1alpha1,name=mdnsrecord-v1alpha1.kb.io,admissionReviewVersions=v1

// DNSRecordCustomDefaulter sets default values on DNSRecords when they are
// created or updated.
//
// NOTE: The +kubebuilder:object:generate=false marker prevents controller-gen from generating DeepCopy methods,
// as it is used only for temporary operations and does not need to be deeply copied.
type DNSRecordCustomDefaulter struct{}

// Default implements webhook.CustomDefaulter so a webhook will be registered for the Kind DNSRecord.
func (d *DNSRecordCustomDefaulter) Default(_ context.Context, obj *ipadnsv1alpha1.DNSRecord) error {
	dnsrecordlog.Info("Defaulting for DNSRecord", "name", obj.GetName())

	if obj.Spec.Type == "" {
		obj.Spec.Type = domaindns.RecordTypeA
	}
	if obj.Spec.ServiceNamespace == "" {
		obj.Spec.ServiceNamespace = obj.Namespace
	}

	return nil
}

// +kubebuilder:webhook:path=/validate-ipadns-my-domain-v1alpha1-dnsrecord,mutating=false,failurePolicy=fail,sideEffects=None,groups=ipadns.my.domain,resources=dnsrecords,verbs=create;update,versions=v1alpha1,name=vdnsrecord-v1alpha1.kb.io,admissionReviewVersions=v1

// DNSRecordCustomValidator rejects DNSRecords the controller could only
// report as Failed.
//
// NOTE: The +kubebuilder:object:generate=false marker prevents controller-gen from generating DeepCopy methods,
// as this struct is used only for temporary operations and does not need to be deeply copied.
type DNSRecordCustomValidator struct {
	client client.Reader
}

// ValidateCreate implements webhook.CustomValidator so a webhook will be registered for the type DNSRecord.
func (v *DNSRecordCustomValidator) ValidateCreate(ctx context.Context, obj *ipadnsv1alpha1.DNSRecord) (admission.Warnings, error) {
	dnsrecordlog.Info("Validation for DNSRecord upon creation", "name", obj.GetName())

	return v.validate(ctx, obj)
}

// ValidateUpdate implements webhook.CustomValidator so a webhook will be registered for the type DNSRecord.
func (v *DNSRecordCustomValidator) ValidateUpdate(ctx context.Context, _, newObj *ipadnsv1alpha1.DNSRecord) (admission.Warnings, error) {
	dnsrecordlog.Info("Validation for DNSRecord upon update", "name", newObj.GetName())

	// Objects being deleted must stay updatable so the finalizer can be removed.
	if !newObj.DeletionTimestamp.IsZero() {
		return nil, nil
	}
	return v.validate(ctx, newObj)
}

// ValidateDelete implements webhook.CustomValidator so a webhook will be registered for the type DNSRecord.
func (v *DNSRecordCustomValidator) ValidateDelete(_ context.Context, obj *ipadnsv1alpha1.DNSRecord) (admission.Warnings, error) {
	dnsrecordlog.Info("Validation for DNSRecord upon deletion", "name", obj.GetName())

	return nil, nil
}

// validate applies the binding rules of the controller. A Service that does
// not exist yet only produces a warning since it may be created later.
func (v *DNSRecordCustomValidator) validate(ctx context.Context, obj *ipadnsv1alpha1.DNSRecord) (admission.Warnings, error) {
	req := adapter.FromDNSRecord(obj)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid DNSRecord %s/%s: %w", obj.Namespace, obj.Name, err)
	}

	if v.client == nil {
		return nil, nil
	}

	var svc corev1.Service
	key := types.NamespacedName{Namespace: req.ServiceNamespace, Name: req.ServiceName}
	if err := v.client.Get(ctx, key, &svc); err != nil {
		if apierrors.IsNotFound(err) {
			return admission.Warnings{fmt.Sprintf("service %s not found; the record is created once it exists", key)}, nil
		}
		return nil, fmt.Errorf("failed to check service reference: %w", err)
	}
	if svc.Spec.Type != corev1.ServiceTypeLoadBalancer {
		return admission.Warnings{fmt.Sprintf("service %s is of type %s and will never get an external address", key, svc.Spec.Type)}, nil
	}

	return nil, nil
}

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

// Package adapter maps Kubernetes objects into binding requests and desired
// external-dns endpoints.
package adapter

import (
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// DefaultAnnotationPrefix is used when no prefix is configured.
const DefaultAnnotationPrefix = "ipadns.io"

// Keys are the annotation keys read from and written to a Service.
type Keys struct {
	DNSName            string
	Zone               string
	TTL                string
	RecordType         string
	Phase              string
	Message            string
	ObservedGeneration string
	AppliedDNSName     string
	AppliedZone        string
}

// NewKeys builds the annotation keys under prefix.
func NewKeys(prefix string) Keys {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = DefaultAnnotationPrefix
	}
	return Keys{
		DNSName:            prefix + "/dns-name",
		Zone:               prefix + "/zone",
		TTL:                prefix + "/ttl",
		RecordType:         prefix + "/record-type",
		Phase:              prefix + "/phase",
		Message:            prefix + "/message",
		ObservedGeneration: prefix + "/observed-generation",
		AppliedDNSName:     prefix + "/applied-dns-name",
		AppliedZone:        prefix + "/applied-zone",
	}
}

// Declares reports whether svc carries a binding annotation.
func (k Keys) Declares(svc *corev1.Service) bool {
	if svc == nil {
		return false
	}
	_, hasName := svc.Annotations[k.DNSName]
	_, hasZone := svc.Annotations[k.Zone]
	return hasName || hasZone
}

// StatusAnnotations renders status fields as annotations.
func (k Keys) StatusAnnotations(phase, message string, observedGeneration int64) map[string]string {
	return map[string]string{
		k.Phase:              phase,
		k.Message:            message,
		k.ObservedGeneration: strconv.FormatInt(observedGeneration, 10),
	}
}

// AppliedAnnotations records the name and zone of a published record so it
// can still be located after the binding annotations are removed.
func (k Keys) AppliedAnnotations(req domaindns.BindingRequest) map[string]string {
	return map[string]string{
		k.AppliedDNSName: req.TargetName,
		k.AppliedZone:    req.Zone,
	}
}

// FromService builds the binding declared by the annotations of svc.
// The Service publishes its own address. Missing fields are left empty and
// reported by BindingRequest.Validate.
func FromService(svc *corev1.Service, keys Keys) domaindns.BindingRequest {
	ann := svc.Annotations
	recordType := strings.ToUpper(strings.TrimSpace(ann[keys.RecordType]))
	if recordType == "" {
		recordType = domaindns.RecordTypeA
	}

	return domaindns.BindingRequest{
		Source:           domaindns.NewResourceRef(domaindns.KindService, svc.Namespace, svc.Name),
		TargetName:       strings.TrimSpace(ann[keys.DNSName]),
		Zone:             strings.TrimSpace(ann[keys.Zone]),
		RecordType:       recordType,
		TTL:              strings.TrimSpace(ann[keys.TTL]),
		ServiceNamespace: svc.Namespace,
		ServiceName:      svc.Name,
		Generation:       svc.Generation,
	}
}

// FromServiceForDelete builds the binding to remove for svc. The name and
// zone last published win over the declared ones, which may have been edited
// or removed since.
func FromServiceForDelete(svc *corev1.Service, keys Keys) domaindns.BindingRequest {
	req := FromService(svc, keys)
	if name := strings.TrimSpace(svc.Annotations[keys.AppliedDNSName]); name != "" {
		req.TargetName = name
		req.Zone = strings.TrimSpace(svc.Annotations[keys.AppliedZone])
	}
	return req
}

// FromDNSRecord builds the binding declared by a DNSRecord.
func FromDNSRecord(rec *ipadnsv1alpha1.DNSRecord) domaindns.BindingRequest {
	recordType := strings.ToUpper(strings.TrimSpace(rec.Spec.Type))
	if recordType == "" {
		recordType = domaindns.RecordTypeA
	}

	var ttl string
	if rec.Spec.TTL != nil {
		ttl = rec.Spec.TTL.String()
	}

	return domaindns.BindingRequest{
		Source:           domaindns.NewResourceRef(domaindns.KindDNSRecord, rec.Namespace, rec.Name),
		TargetName:       strings.TrimSpace(rec.Spec.Name),
		Zone:             strings.TrimSpace(rec.Spec.Zone),
		RecordType:       recordType,
		TTL:              strings.TrimSpace(ttl),
		ServiceNamespace: rec.ServiceNamespaceOrDefault(),
		ServiceName:      rec.Spec.ServiceName,
		Generation:       rec.Generation,
	}
}

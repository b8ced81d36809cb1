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

// Package inventory lists the DNS bindings known to the cluster together
// with their last reported status. It backs the read-only HTTP API and the
// MCP tools.
package inventory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/adapter"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// ErrNotFound is returned by Get when no binding matches.
var ErrNotFound = errors.New("binding not found")

// Binding is the read-only view of one binding.
type Binding struct {
	Source             string `json:"source"`
	Kind               string `json:"kind"`
	Namespace          string `json:"namespace"`
	Name               string `json:"name"`
	DNSName            string `json:"dnsName"`
	Zone               string `json:"zone"`
	RecordName         string `json:"recordName,omitempty"`
	RecordType         string `json:"recordType"`
	TTL                string `json:"ttl,omitempty"`
	Service            string `json:"service"`
	Phase              string `json:"phase,omitempty"`
	Message            string `json:"message,omitempty"`
	ObservedGeneration int64  `json:"observedGeneration,omitempty"`
	Finalized          bool   `json:"finalized"`
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Namespace string
	Zone      string
	// Query is a case-insensitive substring of the DNS name.
	Query string
}

func (f Filter) matches(b Binding) bool {
	if f.Zone != "" && !strings.EqualFold(strings.TrimSuffix(f.Zone, "."), strings.TrimSuffix(b.Zone, ".")) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(b.DNSName), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// Lister reads bindings from DNSRecords and annotated Services.
type Lister struct {
	reader client.Reader
	keys   adapter.Keys
}

// NewLister creates a Lister. keys select the annotated Services.
func NewLister(reader client.Reader, keys adapter.Keys) *Lister {
	return &Lister{reader: reader, keys: keys}
}

// List returns every binding matching f, ordered by source.
func (l *Lister) List(ctx context.Context, f Filter) ([]Binding, error) {
	var opts []client.ListOption
	if f.Namespace != "" {
		opts = append(opts, client.InNamespace(f.Namespace))
	}

	var records ipadnsv1alpha1.DNSRecordList
	if err := l.reader.List(ctx, &records, opts...); err != nil {
		return nil, fmt.Errorf("list DNSRecords: %w", err)
	}
	var services corev1.ServiceList
	if err := l.reader.List(ctx, &services, opts...); err != nil {
		return nil, fmt.Errorf("list Services: %w", err)
	}

	out := make([]Binding, 0, len(records.Items))
	for i := range records.Items {
		if b := FromDNSRecord(&records.Items[i]); f.matches(b) {
			out = append(out, b)
		}
	}
	for i := range services.Items {
		svc := &services.Items[i]
		if !l.keys.Declares(svc) {
			continue
		}
		if b := FromService(svc, l.keys); f.matches(b) {
			out = append(out, b)
		}
	}

	slices.SortFunc(out, func(a, b Binding) int { return cmp.Compare(a.Source, b.Source) })
	return out, nil
}

// Get returns the binding identified by a "kind/namespace/name" source.
func (l *Lister) Get(ctx context.Context, source string) (Binding, error) {
	ref, err := domaindns.ParseResourceRef(source)
	if err != nil {
		return Binding{}, err
	}
	key := types.NamespacedName{Namespace: ref.Namespace(), Name: ref.Name()}

	switch ref.Kind() {
	case domaindns.KindDNSRecord:
		var rec ipadnsv1alpha1.DNSRecord
		if err := l.reader.Get(ctx, key, &rec); err != nil {
			return Binding{}, notFound(source, err)
		}
		return FromDNSRecord(&rec), nil
	case domaindns.KindService:
		var svc corev1.Service
		if err := l.reader.Get(ctx, key, &svc); err != nil {
			return Binding{}, notFound(source, err)
		}
		if !l.keys.Declares(&svc) {
			return Binding{}, fmt.Errorf("%s: %w", source, ErrNotFound)
		}
		return FromService(&svc, l.keys), nil
	default:
		return Binding{}, fmt.Errorf("%w: unknown kind %q", domaindns.ErrInvalidResourceRef, ref.Kind())
	}
}

func notFound(source string, err error) error {
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%s: %w", source, ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", source, err)
}

// FromDNSRecord builds the view of a DNSRecord.
func FromDNSRecord(rec *ipadnsv1alpha1.DNSRecord) Binding {
	req := adapter.FromDNSRecord(rec)
	b := fromRequest(req)
	b.Phase = rec.Status.Phase
	b.Message = rec.Status.Message
	b.ObservedGeneration = rec.Status.ObservedGeneration
	b.Finalized = hasFinalizer(rec.Finalizers)
	return b
}

// FromService builds the view of an annotated Service.
func FromService(svc *corev1.Service, keys adapter.Keys) Binding {
	req := adapter.FromService(svc, keys)
	b := fromRequest(req)
	b.Phase = svc.Annotations[keys.Phase]
	b.Message = svc.Annotations[keys.Message]
	if gen, err := strconv.ParseInt(svc.Annotations[keys.ObservedGeneration], 10, 64); err == nil {
		b.ObservedGeneration = gen
	}
	b.Finalized = hasFinalizer(svc.Finalizers)
	return b
}

func fromRequest(req domaindns.BindingRequest) Binding {
	b := Binding{
		Source:     req.Source.String(),
		Kind:       req.Source.Kind(),
		Namespace:  req.Source.Namespace(),
		Name:       req.Source.Name(),
		DNSName:    req.TargetName,
		Zone:       req.Zone,
		RecordType: req.RecordType,
		TTL:        req.TTL,
		Service:    req.ServiceNamespace + "/" + req.ServiceName,
	}
	if req.HasName() {
		b.RecordName = req.RelativeName()
	}
	return b
}

func hasFinalizer(finalizers []string) bool {
	return slices.Contains(finalizers, ipadnsv1alpha1.FinalizerName)
}

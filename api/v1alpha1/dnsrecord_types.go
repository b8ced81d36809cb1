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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

const (
	// FinalizerName is set on every object whose DNS record may exist in the directory.
	FinalizerName = "dnsrecord.finalizers.ipadns.io"

	// PhaseSynced reports that the directory record matches the desired state.
	PhaseSynced = "Synced"
	// PhaseFailed reports a configuration error that needs operator intervention.
	PhaseFailed = "Failed"
)

// DNSRecordSpec defines the desired state of DNSRecord
type DNSRecordSpec struct {
	// name is the DNS name to publish, relative to the zone or fully qualified
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`

	// zone is the directory DNS zone the record lives in
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	Zone string `json:"zone"`

	// type is the record type; only A is reconciled from a Service IP
	// +kubebuilder:default=A
	// +kubebuilder:validation:Enum=A;CNAME
	// +optional
	Type string `json:"type,omitempty"`

	// ttl is the record TTL in seconds
	// +kubebuilder:validation:XIntOrString
	// +optional
	TTL *intstr.IntOrString `json:"ttl,omitempty"`

	// serviceNamespace is the namespace of the Service; defaults to the DNSRecord namespace
	// +optional
	ServiceNamespace string `json:"serviceNamespace,omitempty"`

	// serviceName is the LoadBalancer Service whose external IP is published
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:MinLength=1
	ServiceName string `json:"serviceName"`
}

// DNSRecordStatus defines the observed state of DNSRecord
type DNSRecordStatus struct {
	// phase is Synced or Failed
	// +optional
	Phase string `json:"phase,omitempty"`

	// message is a human readable description of the last reconciliation
	// +optional
	Message string `json:"message,omitempty"`

	// observedGeneration is the generation the status was computed for
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// recordName is the record name relative to the zone
	// +optional
	RecordName string `json:"recordName,omitempty"`

	// lastReconcileTime is the timestamp of the last reconciliation
	// +optional
	LastReconcileTime *metav1.Time `json:"lastReconcileTime,omitempty"`

	// conditions represent the current state of the DNSRecord resource
	// +listType=map
	// +listMapKey=type
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:path=dnsrecords,scope=Namespaced,shortName=dnsrec
// +kubebuilder:printcolumn:name="Name",type=string,JSONPath=`.spec.name`
// +kubebuilder:printcolumn:name="Zone",type=string,JSONPath=`.spec.zone`
// +kubebuilder:printcolumn:name="Service",type=string,JSONPath=`.spec.serviceName`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// DNSRecord is the Schema for the dnsrecords API.
// It binds a directory DNS record to the external IP of a LoadBalancer Service.
type DNSRecord struct {
	metav1.TypeMeta `json:",inline"`

	// metadata is a standard object metadata
	// +optional
	metav1.ObjectMeta `json:"metadata,omitzero"`

	// spec defines the desired state of DNSRecord
	// +required
	Spec DNSRecordSpec `json:"spec"`

	// status defines the observed state of DNSRecord
	// +optional
	Status DNSRecordStatus `json:"status,omitzero"`
}

// ServiceNamespaceOrDefault returns spec.serviceNamespace, falling back to the object namespace.
func (r *DNSRecord) ServiceNamespaceOrDefault() string {
	if r.Spec.ServiceNamespace != "" {
		return r.Spec.ServiceNamespace
	}
	return r.Namespace
}

// +kubebuilder:object:root=true

// DNSRecordList contains a list of DNSRecord
type DNSRecordList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitzero"`
	Items           []DNSRecord `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DNSRecord{}, &DNSRecordList{})
}

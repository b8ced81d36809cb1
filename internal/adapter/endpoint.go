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

package adapter

import (
	"strconv"

	"sigs.k8s.io/external-dns/endpoint"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// ProviderTTLKey carries a declared TTL on the endpoint. endpoint.TTL cannot
// tell an explicit 0 from an unset value.
const ProviderTTLKey = "ipadns/ttl"

// DesiredEndpoint is the record the directory should hold for req once the
// Service answers on address. The DNS name is relative to the zone.
func DesiredEndpoint(req domaindns.BindingRequest, address string) (*endpoint.Endpoint, error) {
	ttl, err := req.ParsedTTL()
	if err != nil {
		return nil, err
	}

	var recordTTL endpoint.TTL
	if ttl != nil {
		recordTTL = endpoint.TTL(*ttl)
	}

	ep := endpoint.NewEndpointWithTTL(req.RelativeName(), req.RecordType, recordTTL, address)
	ep.WithLabel(endpoint.ResourceLabelKey, req.Source.String())
	if ttl != nil {
		ep.WithProviderSpecific(ProviderTTLKey, strconv.FormatInt(*ttl, 10))
	}
	return ep, nil
}

// RecordValue converts the first target of ep into a directory value.
func RecordValue(ep *endpoint.Endpoint) domaindns.RecordValue {
	value := domaindns.RecordValue{Type: ep.RecordType}
	if len(ep.Targets) > 0 {
		value.Value = ep.Targets[0]
	}
	if raw, ok := ep.GetProviderSpecificProperty(ProviderTTLKey); ok {
		if ttl, err := strconv.ParseInt(raw, 10, 64); err == nil {
			value.TTL = &ttl
		}
	}
	return value
}

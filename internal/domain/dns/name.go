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

package dns

import (
	"fmt"
	"strings"

	mdns "github.com/miekg/dns"
)

// ApexName is the relative name of the zone apex.
const ApexName = "@"

// Normalize returns targetName relative to zone.
//
// Trailing dots are ignored on both sides. A name equal to the zone yields
// ApexName; a name inside the zone yields its prefix; any other name is
// returned unchanged and treated as already relative. The suffix match is on
// label boundaries, so "fooexample.com" is not inside "example.com".
func Normalize(targetName, zone string) string {
	name := strings.TrimRight(targetName, ".")
	z := strings.TrimRight(zone, ".")
	if name == "" || z == "" {
		return name
	}

	if strings.EqualFold(name, z) {
		return ApexName
	}

	if mdns.IsSubDomain(z, name) {
		return strings.TrimRight(name[:len(name)-len(z)], ".")
	}

	return name
}

// ValidateDomainName checks that name is a syntactically valid domain name.
// The apex sentinel is accepted.
func ValidateDomainName(name string) error {
	if name == ApexName {
		return nil
	}
	if _, ok := mdns.IsDomainName(name); !ok {
		return Permanent(fmt.Errorf("%w: %q", ErrInvalidName, name))
	}
	return nil
}

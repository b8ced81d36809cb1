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

// Package credentials reads the directory login from a Kubernetes Secret.
package credentials

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
)

// Secret data keys.
const (
	UsernameKey = "username"
	PasswordKey = "password"
)

// SecretProvider implements domaindns.CredentialProvider on top of a Secret.
// The Secret is read on every call so rotations apply to the next attempt.
type SecretProvider struct {
	reader client.Reader
	key    types.NamespacedName
}

var _ domaindns.CredentialProvider = (*SecretProvider)(nil)

// NewSecretProvider creates a provider reading namespace/name through reader.
func NewSecretProvider(reader client.Reader, namespace, name string) *SecretProvider {
	return &SecretProvider{
		reader: reader,
		key:    types.NamespacedName{Namespace: namespace, Name: name},
	}
}

// Credentials returns the username and password stored in the Secret.
// A Secret lacking either key is a permanent error; a failed read is not.
func (p *SecretProvider) Credentials(ctx context.Context) (domaindns.Credentials, error) {
	var secret corev1.Secret
	if err := p.reader.Get(ctx, p.key, &secret); err != nil {
		return domaindns.Credentials{}, fmt.Errorf("read credentials secret %s: %w", p.key, err)
	}

	username, okUser := secret.Data[UsernameKey]
	password, okPass := secret.Data[PasswordKey]
	if !okUser || !okPass {
		return domaindns.Credentials{}, domaindns.Permanent(
			fmt.Errorf("secret %s: %w", p.key, domaindns.ErrMissingCredentials))
	}

	creds := domaindns.Credentials{Username: string(username), Password: string(password)}
	if err := creds.Validate(); err != nil {
		return domaindns.Credentials{}, fmt.Errorf("secret %s: %w", p.key, err)
	}
	return creds, nil
}

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
	"errors"
	"strings"
	"time"
)

// Operation names the remote step a failure came from.
type Operation string

const (
	OpResolveIP   Operation = "resolve-ip"
	OpCredentials Operation = "credentials"
	OpLogin       Operation = "login"
	OpShow        Operation = "show"
	OpAdd         Operation = "add"
	OpDelete      Operation = "delete"
)

// Action is what the engine does with a classified failure.
type Action int

const (
	// ActionRetry requeues the attempt after a fixed delay.
	ActionRetry Action = iota
	// ActionAbsent treats the failure as confirmation that the record does not exist.
	ActionAbsent
	// ActionFatal stops retrying for this generation.
	ActionFatal
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "Retry"
	case ActionAbsent:
		return "Absent"
	case ActionFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Classification is the result of Classify.
type Classification struct {
	Action Action
	Delay  time.Duration
}

const (
	DefaultMissingIPDelay = 15 * time.Second
	DefaultBackendDelay   = 20 * time.Second
	DefaultAuthDelay      = 30 * time.Second
)

// Classifier maps operation failures to retry decisions. Delays are fixed.
type Classifier struct {
	MissingIPDelay time.Duration
	BackendDelay   time.Duration
	AuthDelay      time.Duration
}

// DefaultClassifier returns a Classifier with the 15s/20s/30s delays.
func DefaultClassifier() Classifier {
	return Classifier{
		MissingIPDelay: DefaultMissingIPDelay,
		BackendDelay:   DefaultBackendDelay,
		AuthDelay:      DefaultAuthDelay,
	}
}

// Classify decides how a failure of op is handled.
func (c Classifier) Classify(op Operation, err error) Classification {
	if IsPermanent(err) {
		return Classification{Action: ActionFatal}
	}
	if (op == OpShow || op == OpDelete) && IsAbsence(err) {
		return Classification{Action: ActionAbsent}
	}
	switch op {
	case OpResolveIP:
		return Classification{Action: ActionRetry, Delay: orDefault(c.MissingIPDelay, DefaultMissingIPDelay)}
	case OpCredentials, OpLogin:
		return Classification{Action: ActionRetry, Delay: orDefault(c.AuthDelay, DefaultAuthDelay)}
	default:
		return Classification{Action: ActionRetry, Delay: orDefault(c.BackendDelay, DefaultBackendDelay)}
	}
}

// BackendError is an error payload returned by the directory itself, as
// opposed to a transport or decoding failure.
type BackendError interface {
	error
	BackendMessage() string
}

// IsAbsence reports whether err signals that a record does not exist.
// Typed not-found errors are checked first. The message match only applies to
// directory error payloads that carry free text.
func IsAbsence(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRecordNotFound) {
		return true
	}
	var backendErr BackendError
	if !errors.As(err, &backendErr) {
		return false
	}
	msg := strings.ToLower(backendErr.BackendMessage())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no such")
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

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
	"time"
)

// OutcomeKind tags the result of one reconciliation attempt.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "Created"
	OutcomeUpdated   OutcomeKind = "Updated"
	OutcomeUnchanged OutcomeKind = "Unchanged"
	OutcomeDeleted   OutcomeKind = "Deleted"
	OutcomeRetry     OutcomeKind = "Retry"
	OutcomeFailed    OutcomeKind = "Failed"
)

// Outcome is returned by value from every reconciliation.
// Delay is only meaningful for OutcomeRetry.
type Outcome struct {
	Kind    OutcomeKind
	Delay   time.Duration
	Message string
	Err     error
}

// Created reports a record that did not exist and was added.
func Created(message string) Outcome {
	return Outcome{Kind: OutcomeCreated, Message: message}
}

// Updated reports a record whose values were replaced.
func Updated(message string) Outcome {
	return Outcome{Kind: OutcomeUpdated, Message: message}
}

// Unchanged reports a record that already held the desired value.
func Unchanged(message string) Outcome {
	return Outcome{Kind: OutcomeUnchanged, Message: message}
}

// Deleted reports a record confirmed absent.
func Deleted(message string) Outcome {
	return Outcome{Kind: OutcomeDeleted, Message: message}
}

// Retry asks the caller to run the reconciliation again after delay.
func Retry(delay time.Duration, err error) Outcome {
	return Outcome{Kind: OutcomeRetry, Delay: delay, Message: errMessage(err), Err: err}
}

// Failed reports a permanent failure for this generation of the source.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Message: errMessage(err), Err: err}
}

// IsSuccess reports whether the directory now matches the desired state.
func (o Outcome) IsSuccess() bool {
	switch o.Kind {
	case OutcomeCreated, OutcomeUpdated, OutcomeUnchanged, OutcomeDeleted:
		return true
	default:
		return false
	}
}

// IsZero reports whether no outcome has been decided yet.
func (o Outcome) IsZero() bool { return o.Kind == "" }

func (o Outcome) String() string {
	if o.Kind == OutcomeRetry {
		return fmt.Sprintf("%s(%s): %s", o.Kind, o.Delay, o.Message)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

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

package binding_test

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ipadnsv1alpha1 "github.com/golgoth31/ipa-dns-operator/api/v1alpha1"
	"github.com/golgoth31/ipa-dns-operator/internal/controller/binding"
	domaindns "github.com/golgoth31/ipa-dns-operator/internal/domain/dns"
	"github.com/golgoth31/ipa-dns-operator/internal/ipa"
)

const zone = "example.com"

var _ = Describe("Engine", func() {
	var (
		ctx      context.Context
		dir      *fakeDirectory
		sessions *fakeSessions
		creds    *fakeCredentials
		resolver *fakeResolver
		target   *fakeTarget
		engine   *binding.Engine
		req      domaindns.BindingRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = newFakeDirectory()
		sessions = &fakeSessions{dir: dir}
		creds = &fakeCredentials{creds: domaindns.Credentials{Username: "admin", Password: "s3cret"}}
		resolver = &fakeResolver{ip: "10.0.0.5"}
		target = &fakeTarget{}
		engine = binding.NewEngine(binding.Deps{
			Resolver:    resolver,
			Credentials: creds,
			Sessions:    sessions,
			Classifier:  domaindns.DefaultClassifier(),
		})
		req = domaindns.BindingRequest{
			Source:           domaindns.NewResourceRef(domaindns.KindDNSRecord, "default", "app"),
			TargetName:       "app.example.com.",
			Zone:             zone,
			RecordType:       domaindns.RecordTypeA,
			ServiceNamespace: "default",
			ServiceName:      "app-lb",
			Generation:       3,
		}
	})

	Describe("Sync", func() {
		It("should create a missing record, report Synced and add the finalizer", func() {
			outcome, err := engine.Sync(ctx, req, target)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeCreated))
			Expect(dir.Calls()).To(Equal([]string{
				"show example.com app",
				"add example.com app A=10.0.0.5",
			}))
			Expect(target.HasFinalizer()).To(BeTrue())

			status := target.lastStatus()
			Expect(status).NotTo(BeNil())
			Expect(status.Phase).To(Equal(ipadnsv1alpha1.PhaseSynced))
			Expect(status.ObservedGeneration).To(Equal(int64(3)))
			Expect(status.RecordName).To(Equal("app"))
			Expect(status.Message).To(ContainSubstring("10.0.0.5"))
		})

		It("should send the TTL as an integer", func() {
			req.TTL = "300"

			_, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir.Calls()).To(ContainElement("add example.com app A=10.0.0.5 ttl=300"))
		})

		It("should send an explicit zero TTL", func() {
			req.TTL = "0"

			_, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir.Calls()).To(ContainElement("add example.com app A=10.0.0.5 ttl=0"))
		})

		It("should issue one show and no mutation when the record already matches", func() {
			_, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeUnchanged))
			Expect(dir.Calls()).To(Equal([]string{
				"show example.com app",
				"add example.com app A=10.0.0.5",
				"show example.com app",
			}))
		})

		It("should treat the desired address among several values as unchanged", func() {
			dir.seed(zone, "app", "10.0.0.1", "10.0.0.5")

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeUnchanged))
		})

		It("should delete then add when the address changed", func() {
			dir.seed(zone, "app", "10.0.0.5")
			resolver.set("10.0.0.9")

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeUpdated))
			Expect(dir.Calls()).To(Equal([]string{
				"show example.com app",
				"delete example.com app",
				"add example.com app A=10.0.0.9",
			}))
			values, _ := dir.values(zone, "app")
			Expect(values).To(Equal([]string{"10.0.0.9"}))
		})

		It("should tolerate a delete that finds nothing during an update", func() {
			dir.seed(zone, "app", "10.0.0.1")
			dir.deleteErrs = []error{&ipa.RPCError{Method: ipa.MethodDelete, Message: "no such record"}}

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeUpdated))
		})

		It("should recover through the create path after delete succeeded and add failed", func() {
			dir.seed(zone, "app", "10.0.0.1")
			dir.addErrs = []error{errors.New("connection reset")}

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(20 * time.Second))
			_, present := dir.values(zone, "app")
			Expect(present).To(BeFalse())
			Expect(target.HasFinalizer()).To(BeFalse())

			outcome, err = engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeCreated))
			Expect(dir.Calls()[3:]).To(Equal([]string{
				"show example.com app",
				"add example.com app A=10.0.0.5",
			}))
		})

		It("should fail a non-A binding without any remote call", func() {
			req.RecordType = domaindns.RecordTypeCNAME

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeFailed))
			Expect(outcome.Err).To(MatchError(domaindns.ErrUnsupportedRecordType))
			Expect(dir.Calls()).To(BeEmpty())
			Expect(sessions.logins.Load()).To(BeZero())
			Expect(target.HasFinalizer()).To(BeFalse())
			Expect(target.lastStatus().Phase).To(Equal(ipadnsv1alpha1.PhaseFailed))
		})

		It("should fail a binding without a zone", func() {
			req.Zone = ""

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeFailed))
			Expect(outcome.Err).To(MatchError(domaindns.ErrMissingZone))
			Expect(dir.Calls()).To(BeEmpty())
		})

		It("should fail a malformed TTL", func() {
			req.TTL = "ten"

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeFailed))
			Expect(outcome.Err).To(MatchError(domaindns.ErrInvalidTTL))
			Expect(dir.Calls()).To(BeEmpty())
		})

		It("should retry after 15s without touching finalizer or status when the IP is missing", func() {
			resolver.set("")

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(15 * time.Second))
			Expect(outcome.Err).To(MatchError(domaindns.ErrNoAddress))
			Expect(sessions.logins.Load()).To(BeZero())
			Expect(target.HasFinalizer()).To(BeFalse())
			Expect(target.lastStatus()).To(BeNil())
		})

		It("should retry after 30s without calling show when login fails", func() {
			sessions.err = domaindns.ErrAuthentication

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(30 * time.Second))
			Expect(dir.Calls()).To(BeEmpty())
			Expect(target.lastStatus()).To(BeNil())
		})

		It("should retry after 30s when the credentials cannot be read", func() {
			creds.err = errors.New("apiserver unavailable")

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Delay).To(Equal(30 * time.Second))
			Expect(sessions.logins.Load()).To(BeZero())
		})

		It("should fail when the credentials are incomplete", func() {
			creds.creds.Password = ""

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeFailed))
			Expect(outcome.Err).To(MatchError(domaindns.ErrMissingCredentials))
		})

		It("should retry after 20s when show fails", func() {
			dir.showErrs = []error{errors.New("internal error")}

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(20 * time.Second))
			Expect(dir.Calls()).To(HaveLen(1))
		})

		It("should take the create path on the structured not-found code alone", func() {
			dir.showErrs = []error{&ipa.RPCError{Method: ipa.MethodShow, Code: ipa.CodeNotFound, Message: "gone"}}

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeCreated))
		})

		It("should propagate status write failures", func() {
			target.patchErr = errors.New("conflict")

			outcome, err := engine.Sync(ctx, req, target)
			Expect(err).To(MatchError(target.patchErr))
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeCreated))
			Expect(target.HasFinalizer()).To(BeFalse())
		})

		It("should propagate finalizer write failures", func() {
			target.addErr = errors.New("forbidden")

			_, err := engine.Sync(ctx, req, target)
			Expect(err).To(MatchError(target.addErr))
		})

		It("should never interleave remote calls for one key", func() {
			dir.delay = 5 * time.Millisecond

			var wg sync.WaitGroup
			for range 6 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := engine.Sync(ctx, req, &fakeTarget{})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(dir.maxInFlight.Load()).To(Equal(int32(1)))
			Expect(dir.Calls()).To(HaveLen(7), "one create then five unchanged lookups")
		})
	})

	Describe("Finalize", func() {
		BeforeEach(func() {
			target.finalizer = true
		})

		It("should do nothing without a finalizer", func() {
			target.finalizer = false

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeDeleted))
			Expect(sessions.logins.Load()).To(BeZero())
		})

		It("should release the finalizer when no name was declared", func() {
			req.TargetName = ""

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeDeleted))
			Expect(target.HasFinalizer()).To(BeFalse())
			Expect(sessions.logins.Load()).To(BeZero())
		})

		It("should delete the record and release the finalizer", func() {
			dir.seed(zone, "app", "10.0.0.5")

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeDeleted))
			Expect(dir.Calls()).To(Equal([]string{"delete example.com app"}))
			Expect(target.HasFinalizer()).To(BeFalse())
			Expect(target.lastStatus()).To(BeNil())
		})

		It("should treat an absent record as deleted", func() {
			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeDeleted))
			Expect(outcome.Message).To(ContainSubstring("already absent"))
			Expect(target.HasFinalizer()).To(BeFalse())
		})

		It("should keep the finalizer and retry after 20s on a transient failure", func() {
			dir.seed(zone, "app", "10.0.0.5")
			dir.deleteErrs = []error{errors.New("timeout")}

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(20 * time.Second))
			Expect(target.HasFinalizer()).To(BeTrue())
		})

		It("should keep the finalizer when the directory host cannot be resolved", func() {
			dir.seed(zone, "app", "10.0.0.5")
			dir.deleteErrs = []error{&url.Error{
				Op:  "Post",
				URL: "https://ipa.corp.invalid/ipa/session/json",
				Err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "ipa.corp.invalid", IsNotFound: true}},
			}}

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(outcome.Delay).To(Equal(20 * time.Second))
			Expect(target.HasFinalizer()).To(BeTrue())
			_, present := dir.values(zone, "app")
			Expect(present).To(BeTrue())
		})

		It("should keep the finalizer when an unstructured error mentions not found", func() {
			dir.seed(zone, "app", "10.0.0.5")
			dir.deleteErrs = []error{errors.New("proxy: 404 Not Found")}

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeRetry))
			Expect(target.HasFinalizer()).To(BeTrue())
		})

		It("should keep the finalizer and retry after 30s when login fails", func() {
			sessions.err = domaindns.ErrAuthentication

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Delay).To(Equal(30 * time.Second))
			Expect(target.HasFinalizer()).To(BeTrue())
			Expect(dir.Calls()).To(BeEmpty())
		})

		It("should keep the finalizer when the zone is missing", func() {
			req.Zone = ""

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeFailed))
			Expect(target.HasFinalizer()).To(BeTrue())
			Expect(sessions.logins.Load()).To(BeZero())
			Expect(target.lastStatus().Phase).To(Equal(ipadnsv1alpha1.PhaseFailed))
		})

		It("should delete regardless of the declared record type", func() {
			req.RecordType = domaindns.RecordTypeCNAME
			dir.seed(zone, "app", "10.0.0.5")

			outcome, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Kind).To(Equal(domaindns.OutcomeDeleted))
		})

		It("should propagate finalizer removal failures", func() {
			target.removeErr = errors.New("conflict")

			_, err := engine.Finalize(ctx, req, target)
			Expect(err).To(MatchError(target.removeErr))
		})

		It("should never add the finalizer back", func() {
			_, err := engine.Finalize(ctx, req, target)
			Expect(err).NotTo(HaveOccurred())
			Expect(target.HasFinalizer()).To(BeFalse())
		})
	})
})

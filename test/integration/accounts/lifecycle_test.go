// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package accounts_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/internal/store"
	"github.com/holomush/accounts/pkg/errutil"
)

const initialPassword = "Passw0rd!"

var client = auth.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "integration"}

// recordingMailer keeps the last reset link it was asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	link string
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, _, _, resetLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.link = resetLink
	return nil
}

func (m *recordingMailer) token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := url.Parse(m.link)
	Expect(err).NotTo(HaveOccurred())
	return u.Query().Get("token")
}

// fakeAvatars records deletions and fails when err is set.
type fakeAvatars struct {
	err     error
	deleted []int64
}

func (a *fakeAvatars) DeleteAvatar(_ context.Context, accountID int64) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, accountID)
	return nil
}

// fakeEvents records published account deletions.
type fakeEvents struct {
	published []int64
}

func (e *fakeEvents) PublishAccountDeleted(_ context.Context, accountID int64) error {
	e.published = append(e.published, accountID)
	return nil
}

func expectCode(err error, code errutil.Code) {
	GinkgoHelper()
	Expect(err).To(HaveOccurred())
	Expect(errutil.CodeOf(err)).To(Equal(code))
}

var _ = Describe("Authentication", func() {
	var (
		svc      *auth.Service
		username string
		id       int64
	)

	BeforeEach(func() {
		var err error
		svc, err = auth.NewAuthService(env.Accounts, env.Tokens, env.hasher)
		Expect(err).NotTo(HaveOccurred())

		username = uniqueUsername("Auth ")
		id = createAccount(username, initialPassword, auth.PrivilegePublic|auth.PrivilegeNormal, time.Now())
	})

	It("issues a session that authorizes until logout", func() {
		grant, err := svc.Authenticate(env.ctx, username, initialPassword, client)
		Expect(err).NotTo(HaveOccurred())
		Expect(grant.AccountID).To(Equal(id))

		token, err := svc.Authorize(env.ctx, grant.Secret, &id)
		Expect(err).NotTo(HaveOccurred())
		Expect(token.HashedSecret).To(Equal(auth.HashSecret(grant.Secret)))

		Expect(svc.Logout(env.ctx, token, client)).To(Succeed())

		_, err = svc.Authorize(env.ctx, grant.Secret, nil)
		expectCode(err, errutil.CodeIncorrectCredentials)
	})

	It("matches usernames through their normalized form", func() {
		_, err := svc.Authenticate(env.ctx, auth.NormalizeUsername(username), initialPassword, client)
		Expect(err).NotTo(HaveOccurred())
	})

	It("answers a wrong password and an unknown user identically", func() {
		_, wrongPassword := svc.Authenticate(env.ctx, username, "Wr0ngPassword", client)
		_, unknownUser := svc.Authenticate(env.ctx, uniqueUsername("ghost"), initialPassword, client)

		expectCode(wrongPassword, errutil.CodeIncorrectCredentials)
		expectCode(unknownUser, errutil.CodeIncorrectCredentials)
		Expect(errutil.MessageOf(wrongPassword)).To(Equal(errutil.MessageOf(unknownUser)))
	})

	It("rejects a session presented for another account", func() {
		grant, err := svc.Authenticate(env.ctx, username, initialPassword, client)
		Expect(err).NotTo(HaveOccurred())

		other := id + 1000
		_, err = svc.Authorize(env.ctx, grant.Secret, &other)
		expectCode(err, errutil.CodeIncorrectCredentials)
	})
})

var _ = Describe("Password reset", func() {
	var (
		resets   *auth.PasswordResetService
		authSvc  *auth.Service
		mailer   *recordingMailer
		username string
	)

	BeforeEach(func() {
		mailer = &recordingMailer{}
		links, err := auth.NewResetLinkBuilder("https://example.com/reset")
		Expect(err).NotTo(HaveOccurred())
		resets, err = auth.NewPasswordResetService(env.Accounts, env.Resets, env.hasher, mailer, links)
		Expect(err).NotTo(HaveOccurred())
		authSvc, err = auth.NewAuthService(env.Accounts, env.Tokens, env.hasher)
		Expect(err).NotTo(HaveOccurred())

		username = uniqueUsername("reset")
		createAccount(username, initialPassword, auth.PrivilegePublic|auth.PrivilegeNormal, time.Now())
	})

	It("replaces the password once and consumes the token", func() {
		Expect(resets.Initiate(env.ctx, username, client)).To(Succeed())
		token := mailer.token()
		Expect(token).NotTo(BeEmpty())

		Expect(resets.Verify(env.ctx, token, "N3wPassword", client)).To(Succeed())

		_, err := authSvc.Authenticate(env.ctx, username, "N3wPassword", client)
		Expect(err).NotTo(HaveOccurred())
		_, err = authSvc.Authenticate(env.ctx, username, initialPassword, client)
		expectCode(err, errutil.CodeIncorrectCredentials)

		err = resets.Verify(env.ctx, token, "An0therPassword", client)
		expectCode(err, errutil.CodeIncorrectCredentials)
	})

	It("rejects a weak new password without consuming the token", func() {
		Expect(resets.Initiate(env.ctx, username, client)).To(Succeed())
		token := mailer.token()

		expectCode(resets.Verify(env.ctx, token, "short", client), errutil.CodeBadRequest)
		Expect(resets.Verify(env.ctx, token, "N3wPassword", client)).To(Succeed())
	})

	It("revokes pending tokens when the requester is renamed", func() {
		profiles, err := account.NewProfileService(account.ProfileDeps{
			Accounts:   env.Accounts,
			Resets:     env.Resets,
			Hasher:     env.hasher,
			Transactor: store.NewTransactor(env.pool),
		})
		Expect(err).NotTo(HaveOccurred())

		donor := auth.PrivilegePublic | auth.PrivilegeNormal | auth.PrivilegeDonor
		oldName := uniqueUsername("req")
		requester := createAccount(oldName, initialPassword, donor, time.Now())
		other := createAccount(uniqueUsername("other"), initialPassword, donor, time.Now())

		Expect(resets.Initiate(env.ctx, oldName, client)).To(Succeed())
		token := mailer.token()

		Expect(profiles.UpdateUsername(env.ctx, requester, uniqueUsername("moved"))).To(Succeed())
		Expect(profiles.UpdateUsername(env.ctx, other, oldName)).To(Succeed())

		expectCode(resets.Verify(env.ctx, token, "Hijacked1pw", client), errutil.CodeIncorrectCredentials)
		_, err = authSvc.Authenticate(env.ctx, oldName, initialPassword, client)
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("Profile edits", func() {
	var profiles *account.ProfileService

	BeforeEach(func() {
		var err error
		profiles, err = account.NewProfileService(account.ProfileDeps{
			Accounts:   env.Accounts,
			Resets:     env.Resets,
			Hasher:     env.hasher,
			Transactor: store.NewTransactor(env.pool),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses a username that collides after normalization", func() {
		taken := uniqueUsername("Taken ")
		createAccount(taken, initialPassword, auth.PrivilegeNormal, time.Now())
		donor := createAccount(uniqueUsername("donor"), initialPassword,
			auth.PrivilegeNormal|auth.PrivilegeDonor, time.Now())

		err := profiles.UpdateUsername(env.ctx, donor, auth.NormalizeUsername(taken))
		expectCode(err, errutil.CodeConflict)
	})

	It("renames a donor account", func() {
		donor := createAccount(uniqueUsername("donor"), initialPassword,
			auth.PrivilegeNormal|auth.PrivilegeDonor, time.Now())
		renamed := uniqueUsername("Renamed ")

		Expect(profiles.UpdateUsername(env.ctx, donor, renamed)).To(Succeed())

		acc, err := env.Accounts.FetchByID(env.ctx, donor)
		Expect(err).NotTo(HaveOccurred())
		Expect(acc.Username).To(Equal(renamed))
	})
})

var _ = Describe("Account deletion", func() {
	var (
		avatars      *fakeAvatars
		events       *fakeEvents
		orchestrator *account.DeletionOrchestrator
	)

	BeforeEach(func() {
		avatars = &fakeAvatars{}
		events = &fakeEvents{}
		var err error
		orchestrator, err = account.NewDeletionOrchestrator(account.DeletionDeps{
			Accounts:   env.Accounts,
			Clans:      env.Clans,
			Resets:     env.Resets,
			IPs:        env.IPs,
			Hardware:   env.Hardware,
			Avatars:    avatars,
			Events:     events,
			Transactor: store.NewTransactor(env.pool),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("anonymizes the account, purges its data and hands off the clan", func() {
		t0 := time.Now().Add(-time.Hour).Truncate(time.Microsecond)
		owner := createAccount(uniqueUsername("owner"), initialPassword, auth.Privileges(3), t0)
		clan := createClan(owner)
		older := createAccount(uniqueUsername("older"), initialPassword, auth.Privileges(2), t0.Add(-time.Minute))
		newer := createAccount(uniqueUsername("newer"), initialPassword, auth.Privileges(2), t0)
		joinClan(older, clan)
		joinClan(newer, clan)
		addAssociations(owner)

		ownerAccount, err := env.Accounts.FetchByID(env.ctx, owner)
		Expect(err).NotTo(HaveOccurred())
		_, err = env.Resets.Create(env.ctx, ownerAccount.Username, "pending-reset-hash")
		Expect(err).NotTo(HaveOccurred())

		Expect(orchestrator.Delete(env.ctx, owner)).To(Succeed())

		deleted, err := env.Accounts.FetchByID(env.ctx, owner)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted.Username).To(Equal(auth.AnonymizedUsername(owner)))
		Expect(deleted.Email).To(Equal(auth.AnonymizedEmail(owner)))
		Expect(deleted.Privileges).To(BeZero())
		Expect(deleted.ClanID).To(BeNil())

		Expect(countRows("ip_user", owner)).To(BeZero())
		Expect(countRows("hw_user", owner)).To(BeZero())
		_, err = env.Resets.FetchByHash(env.ctx, "pending-reset-hash")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())

		handedOff, err := env.Clans.FetchByID(env.ctx, clan)
		Expect(err).NotTo(HaveOccurred())
		Expect(handedOff.OwnerID).To(Equal(older), "lowest privileges, then least recent activity")

		Expect(avatars.deleted).To(ConsistOf(owner))
		Expect(events.published).To(ConsistOf(owner))
	})

	It("dissolves a clan with no other members", func() {
		owner := createAccount(uniqueUsername("solo"), initialPassword, auth.PrivilegeNormal, time.Now())
		clan := createClan(owner)

		Expect(orchestrator.Delete(env.ctx, owner)).To(Succeed())

		_, err := env.Clans.FetchByID(env.ctx, clan)
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
	})

	It("rolls back every change when a step fails", func() {
		username := uniqueUsername("keep")
		owner := createAccount(username, initialPassword, auth.PrivilegeNormal, time.Now())
		addAssociations(owner)
		avatars.err = errors.New("bucket unavailable")

		expectCode(orchestrator.Delete(env.ctx, owner), errutil.CodeInternal)

		kept, err := env.Accounts.FetchByID(env.ctx, owner)
		Expect(err).NotTo(HaveOccurred())
		Expect(kept.Username).To(Equal(username))
		Expect(countRows("ip_user", owner)).To(Equal(1))
		Expect(countRows("hw_user", owner)).To(Equal(1))
		Expect(events.published).To(BeEmpty())
	})

	It("is idempotent", func() {
		owner := createAccount(uniqueUsername("twice"), initialPassword, auth.PrivilegeNormal, time.Now())

		Expect(orchestrator.Delete(env.ctx, owner)).To(Succeed())
		Expect(orchestrator.Delete(env.ctx, owner)).To(Succeed())

		deleted, err := env.Accounts.FetchByID(env.ctx, owner)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted.Username).To(Equal(auth.AnonymizedUsername(owner)))
	})

	It("reports an unknown account as not found", func() {
		expectCode(orchestrator.Delete(env.ctx, 999_999_999), errutil.CodeNotFound)
	})
})

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account_test

import (
	"context"
	"slices"
	"sync"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/auth"
)

// world is an in-memory store backing every collaborator of the deletion
// orchestrator. Transactions snapshot the database state and restore it on
// error; avatars live outside the database and are never restored.
type world struct {
	mu       sync.Mutex
	accounts map[int64]*auth.Account
	clans    map[int64]*account.Clan
	resets   map[string][]string
	ips      map[int64][]account.IPAssociation
	hardware map[int64][]account.HardwareAssociation
	avatars  map[int64]bool

	inTx      bool
	published []publishedEvent
	failures  map[string]error
}

type publishedEvent struct {
	accountID int64
	inTx      bool
}

func newWorld() *world {
	return &world{
		accounts: map[int64]*auth.Account{},
		clans:    map[int64]*account.Clan{},
		resets:   map[string][]string{},
		ips:      map[int64][]account.IPAssociation{},
		hardware: map[int64][]account.HardwareAssociation{},
		avatars:  map[int64]bool{},
		failures: map[string]error{},
	}
}

func (w *world) failOn(op string, err error) { w.failures[op] = err }

func (w *world) fail(op string) error { return w.failures[op] }

func (w *world) deps() account.DeletionDeps {
	return account.DeletionDeps{
		Accounts:   worldAccounts{w},
		Clans:      worldClans{w},
		Resets:     worldResets{w},
		IPs:        worldIPs{w},
		Hardware:   worldHardware{w},
		Avatars:    worldAvatars{w},
		Events:     worldEvents{w},
		Transactor: worldTransactor{w},
	}
}

type snapshot struct {
	accounts map[int64]auth.Account
	clans    map[int64]account.Clan
	resets   map[string][]string
	ips      map[int64][]account.IPAssociation
	hardware map[int64][]account.HardwareAssociation
}

func (w *world) snapshot() snapshot {
	s := snapshot{
		accounts: map[int64]auth.Account{},
		clans:    map[int64]account.Clan{},
		resets:   map[string][]string{},
		ips:      map[int64][]account.IPAssociation{},
		hardware: map[int64][]account.HardwareAssociation{},
	}
	for id, a := range w.accounts {
		s.accounts[id] = *a
	}
	for id, c := range w.clans {
		s.clans[id] = *c
	}
	for k, v := range w.resets {
		s.resets[k] = slices.Clone(v)
	}
	for k, v := range w.ips {
		s.ips[k] = slices.Clone(v)
	}
	for k, v := range w.hardware {
		s.hardware[k] = slices.Clone(v)
	}
	return s
}

func (w *world) restore(s snapshot) {
	w.accounts = map[int64]*auth.Account{}
	for id, a := range s.accounts {
		w.accounts[id] = &a
	}
	w.clans = map[int64]*account.Clan{}
	for id, c := range s.clans {
		w.clans[id] = &c
	}
	w.resets = s.resets
	w.ips = s.ips
	w.hardware = s.hardware
}

type worldTransactor struct{ w *world }

func (t worldTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.w.mu.Lock()
	before := t.w.snapshot()
	t.w.inTx = true
	t.w.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		err = t.w.fail("commit")
	}

	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	t.w.inTx = false
	if err != nil {
		t.w.restore(before)
	}
	return err
}

type worldAccounts struct{ w *world }

func (r worldAccounts) FetchByUsername(_ context.Context, username string) (*auth.Account, error) {
	for _, a := range r.w.accounts {
		if a.NormalizedUsername() == auth.NormalizeUsername(username) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r worldAccounts) FetchByID(_ context.Context, id int64) (*auth.Account, error) {
	if err := r.w.fail("fetch account"); err != nil {
		return nil, err
	}
	a, ok := r.w.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r worldAccounts) FetchManyByClanID(_ context.Context, clanID int64) ([]*auth.Account, error) {
	var members []*auth.Account
	for _, a := range r.w.accounts {
		if a.ClanID != nil && *a.ClanID == clanID {
			cp := *a
			members = append(members, &cp)
		}
	}
	return members, nil
}

func (r worldAccounts) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := r.FetchByUsername(ctx, username)
	return err == nil, nil
}

func (r worldAccounts) UpdateUsername(_ context.Context, id int64, username string) error {
	r.w.accounts[id].Username = username
	return nil
}

func (r worldAccounts) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.w.accounts[id].PasswordHash = passwordHash
	return nil
}

func (r worldAccounts) UpdateEmail(_ context.Context, id int64, email string) error {
	r.w.accounts[id].Email = email
	return nil
}

func (r worldAccounts) Anonymize(_ context.Context, id int64) error {
	if err := r.w.fail("anonymize"); err != nil {
		return err
	}
	a, ok := r.w.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	content := auth.DeletedUserpageContent
	a.Username = auth.AnonymizedUsername(id)
	a.UsernameAka = ""
	a.Email = auth.AnonymizedEmail(id)
	a.UserpageContent = &content
	a.Country = auth.UnknownCountry
	a.Privileges = 0
	a.ClanID = nil
	return nil
}

type worldClans struct{ w *world }

func (r worldClans) FetchByID(_ context.Context, id int64) (*account.Clan, error) {
	c, ok := r.w.clans[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r worldClans) UpdateOwner(_ context.Context, id, ownerID int64) error {
	if err := r.w.fail("update clan owner"); err != nil {
		return err
	}
	r.w.clans[id].OwnerID = ownerID
	return nil
}

func (r worldClans) DeleteByID(_ context.Context, id int64) error {
	delete(r.w.clans, id)
	for _, a := range r.w.accounts {
		if a.ClanID != nil && *a.ClanID == id {
			a.ClanID = nil
		}
	}
	return nil
}

type worldResets struct{ w *world }

func (r worldResets) Create(_ context.Context, username, hashedSecret string) (*auth.PasswordResetToken, error) {
	r.w.resets[username] = append(r.w.resets[username], hashedSecret)
	return &auth.PasswordResetToken{HashedSecret: hashedSecret, Username: username}, nil
}

func (r worldResets) FetchByHash(_ context.Context, hashedSecret string) (*auth.PasswordResetToken, error) {
	for username, hashes := range r.w.resets {
		if slices.Contains(hashes, hashedSecret) {
			return &auth.PasswordResetToken{HashedSecret: hashedSecret, Username: username}, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r worldResets) DeleteByHash(_ context.Context, hashedSecret string) error {
	for username, hashes := range r.w.resets {
		r.w.resets[username] = slices.DeleteFunc(hashes, func(h string) bool { return h == hashedSecret })
	}
	return nil
}

func (r worldResets) DeleteAllByUsername(_ context.Context, username string) ([]auth.PasswordResetToken, error) {
	if err := r.w.fail("delete reset tokens"); err != nil {
		return nil, err
	}
	var removed []auth.PasswordResetToken
	for _, hash := range r.w.resets[username] {
		removed = append(removed, auth.PasswordResetToken{HashedSecret: hash, Username: username})
	}
	delete(r.w.resets, username)
	return removed, nil
}

type worldIPs struct{ w *world }

func (r worldIPs) DeleteAllByAccountID(_ context.Context, accountID int64) ([]account.IPAssociation, error) {
	if err := r.w.fail("delete ip associations"); err != nil {
		return nil, err
	}
	removed := r.w.ips[accountID]
	delete(r.w.ips, accountID)
	return removed, nil
}

type worldHardware struct{ w *world }

func (r worldHardware) DeleteAllByAccountID(_ context.Context, accountID int64) ([]account.HardwareAssociation, error) {
	removed := r.w.hardware[accountID]
	delete(r.w.hardware, accountID)
	return removed, nil
}

type worldAvatars struct{ w *world }

func (s worldAvatars) DeleteAvatar(_ context.Context, accountID int64) error {
	if err := s.w.fail("delete avatar"); err != nil {
		return err
	}
	delete(s.w.avatars, accountID)
	return nil
}

type worldEvents struct{ w *world }

func (e worldEvents) PublishAccountDeleted(_ context.Context, accountID int64) error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	e.w.published = append(e.w.published, publishedEvent{accountID: accountID, inTx: e.w.inTx})
	return e.w.fail("publish")
}

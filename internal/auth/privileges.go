// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

// Privileges is the capability bitmask stored on an account.
type Privileges uint32

// Privilege bits. Values are persisted and must not be renumbered.
const (
	PrivilegePublic Privileges = 1 << iota
	PrivilegeNormal
	PrivilegeDonor
	PrivilegeAdminAccessRAP
	PrivilegeAdminManageUsers
	PrivilegeAdminBanUsers
	PrivilegeAdminSilenceUsers
	PrivilegeAdminWipeUsers
	PrivilegeAdminManageBeatmaps
	PrivilegeAdminManageServer
	PrivilegeAdminManageSettings
	PrivilegeAdminManageBetaKeys
	PrivilegeAdminManageReports
	PrivilegeAdminManageDocs
	PrivilegeAdminManageBadges
	PrivilegeAdminViewRAPLogs
	PrivilegeAdminManagePrivileges
	PrivilegeAdminSendAlerts
	PrivilegeAdminChatMod
	PrivilegeAdminKickUsers
	PrivilegePendingVerification
	PrivilegeTournamentStaff
	PrivilegeAdminCaker
	PrivilegePremium
)

// Has reports whether every bit of want is set.
func (p Privileges) Has(want Privileges) bool {
	return p&want == want
}

// With returns p with the bits of add set.
func (p Privileges) With(add Privileges) Privileges {
	return p | add
}

// Without returns p with the bits of remove cleared.
func (p Privileges) Without(remove Privileges) Privileges {
	return p &^ remove
}

// CanAuthenticate reports whether an account holding p may sign in.
func (p Privileges) CanAuthenticate() bool {
	return p.Has(PrivilegeNormal) && !p.Has(PrivilegePendingVerification)
}

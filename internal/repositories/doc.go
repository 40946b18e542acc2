// Package repositories implements SQLite persistence for all domain entities.
//
// Key Implementations:
//   - [UserRepository] : internal users
//   - [AccountLinkRepository] : the single mapping from users to external accounts
//   - [CredentialRepository] : OAuth tokens keyed by external account, with compare-and-swap updates
//   - [PlaylistRepository] : idempotent get-or-create registry of external playlists
//   - [LinkRepository] : sharing link slugs with usage counters
//   - [ContributionRepository] : the contribution ledger and cooldown queries
//
// Inserts assign a UUID and a per-table sequence number inside one transaction.
// The [NextSequence] function increments per-table counters stored in dedicated sequence tables.
//
// Lookups that find nothing return the matching not-found sentinel from the shared package,
// so callers can branch with [errors.Is].
package repositories

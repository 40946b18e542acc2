// Package models defines the persisted entities of the collaborative playlist service.
//
// Every entity embeds [Entity], which carries the generated ID, the per-table sequence number,
// and creation/update timestamps, and satisfies the [Model] interface.
//
//   - [User] : internal account, one per person
//   - [AccountLink] : the single mapping between a [User] and an external provider account
//   - [Credential] : the OAuth tokens for one external account
//   - [Playlist] : registry entry for an external collaborative playlist
//   - [SharingLink] : public slug that points contributors at a [Playlist]
//   - [Contribution] : one contributor's batch of tracks, with a four week cooldown
//
// Times that take part in expiry arithmetic ([Credential.ExpiresAt], [Contribution.ExpiresAt])
// are kept at millisecond precision so they round-trip through storage unchanged.
package models

// Package services defines the [Provider] interface for the external music service and implements it for Spotify.
//
// # Provider Interface
//
// Every [Provider] call takes the access token it acts with. The service never holds a
// long-lived token itself: the owner's token mutates playlists, the contributor's token reads
// their top tracks, and callers decide which is which.
//
// # Spotify Implementation
//
// [SpotifyService] talks to the Spotify Web API with Bearer tokens and typed request and response
// bodies. Reads (GET) pass through a [rate.Limiter] and are retried on 429 after the Retry-After
// delay. Writes are sent once; a failed write is reported, never replayed.
//
// # Token Refresh
//
// [TokenRefresher] performs a single refresh_token grant using client credentials in HTTP Basic auth.
// Failures come back as [*shared.RefreshError] and never panic. When the provider omits a new
// refresh token the old one is returned.
//
// # Error Handling
//
// Non-2xx responses become [*APIError], which matches [shared.ErrAPIRequest] with [errors.Is]
// and exposes the status code.
package services

// Package server provides the HTTP plumbing shared by the web service and the CLI login flow.
//
// # Router
//
// [NewRouter] builds a chi router with request ids, real client addresses, request logging and panic recovery.
// Extra [Middleware] runs after those, in the order given. Route groups implement [Handler] and register
// themselves with Routes.
//
// [Serve] runs a handler until its context is cancelled and then shuts the listener down gracefully.
//
// # Sessions
//
// [Sessions] signs a short JWT (HS256) naming the user and their Spotify account, and stores it in an
// HttpOnly cookie. [Sessions.Require] rejects requests without a valid session; handlers read it back with
// [SessionFrom]. A Bearer Authorization header is accepted in place of the cookie for scripted clients.
//
// # Rate Limiting
//
// [RateLimiter] applies a token bucket per client address and answers 429 with Retry-After when a bucket
// is empty.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the CLI sign-in callback. It checks the state parameter, exchanges the code through
// the provider, and delivers the tokens on a channel. Only the first callback is processed.
//
// # Responses
//
// [WriteJSON] and [WriteError] write JSON bodies; [DecodeJSON] reads bounded request bodies strictly.
package server

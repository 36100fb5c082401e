// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session ties browser sessions and their views to grid stores.

# Session Cookies

Each browser gets a random uuid session id, stored in the grid_session
cookie together with an HMAC-SHA256 signature:

	session.SetCookie(w, id, secret)
	id, ok := session.FromRequest(r, secret)

The cookie value is "<id>.<signature>" with the signature URL-safe base64
encoded without padding. A cookie that fails verification is treated as
absent and the visitor gets a new session.

When no secret is configured one is generated at startup:

	secret, err := session.GenerateSecret()

Sessions then do not survive a restart, which is fine because grid state
lives in memory anyway.

# Views

Every page load is a view with its own uuid, carried by later requests in
the view parameter:

	view := session.ViewFromRequest(r)

Two tabs of one browser share the session but not the grid.

# Registry

The registry keeps one grid.Store per view:

	reg := session.NewRegistry(factory, limit, recorder, logger)
	store, created, err := reg.Get(session.Key{Session: id, View: view})

It holds at most limit views. Opening one more evicts the least recently
used view; its store is closed in the background so pending patches are
still delivered.
*/
package session

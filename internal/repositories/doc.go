// Package repositories implements SQLite persistence for client-side state.
//
// The only durable state wyrm keeps is the session credential: a single
// bearer token in the sessions table, the terminal analogue of the web
// client's localStorage slot. [SessionRepository] implements
// [models.TokenStore] with last-write-wins upsert semantics; it survives a
// process restart but not an explicit clear. No expiry is tracked locally,
// expiry is discovered reactively when the backend answers 401.
package repositories

// Package controller implements the session-aware client state layer: the
// component that reconciles the persisted credential, the remote profile, the
// catalog search results and the personal library into one consistent view.
//
// # Architecture
//
// Controllers are pure state-transition units: inputs are user events and
// backend responses, outputs are view-model snapshots ([SessionSnapshot],
// [SearchSnapshot], [LibrarySnapshot]). Render surfaces (the CLI runner and
// the bubbletea TUI) consume snapshots and never reach into controller
// internals, which keeps the only non-trivial control flow in the repository
// testable without a terminal.
//
// # The three controllers
//
//   - [Session] owns the credential slot and the authenticated/unauthenticated
//     view switch. It is the single writer of the token store; every other
//     component only reads it through the gateway.
//   - [Search] accepts catalog queries. Empty queries fail locally without a
//     network call; each response replaces the result set wholesale.
//   - [Library] mirrors the backend's library snapshot. The client never
//     patches an entry locally: every mutation is sent to the backend and the
//     full set is re-fetched, making the backend the sole source of truth for
//     rating identity and ordering.
//
// # Mutations and refresh
//
// All three mutating operations (save, update, delete) funnel through one
// rule, [NewMutationResult]: on success schedule exactly one refresh of the
// owning collection, on 401 tear the session down, on any other failure
// surface the message and change nothing.
//
// # Out-of-order completion
//
// Snapshots carry a monotonic generation per view region. Renders apply a
// snapshot only when its generation is not older than the last one rendered
// for that region, so independently triggered request chains resolve
// last-write-wins without cross-contaminating regions. In-flight requests are
// not cancelled; a superseded response is simply dropped at render time.
package controller

// Package services implements the HTTP layer between wyrm and the BookyWarm
// backend.
//
// # API Gateway
//
// [APIService] is a thin asynchronous request layer. It attaches the stored
// credential as a bearer header on protected calls and surfaces outcomes as
// typed results:
//
//   - 2xx responses decode into the caller's value
//   - non-2xx responses become a [*HTTPError] carrying the status and the
//     body's error field (shown verbatim to the user)
//   - transport-level failures wrap [shared.ErrConnection] and render as a
//     generic connectivity message, so users can tell "you made a mistake"
//     from "the service is unreachable"
//
// When no credential is stored the protected call still fires and the backend
// rejects it; the gateway never short-circuits, keeping error handling
// centralized at the caller. Calls are at-most-once: the gateway never
// retries.
//
// # Backend Client
//
// [BackendService] implements the [Backend] interface with one typed method
// per REST endpoint. Controllers depend on the interface, which keeps the
// state-transition layer testable against a mock backend.
package services

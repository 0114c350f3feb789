// Package api is the shell's HTTP client for the pharmdesk backend.
//
// # Overview
//
// Every call goes to one origin fixed at boot. The client owns the Accept
// and Authorization headers: Accept is always application/json and the
// bearer token, when the session has one, is attached by an oauth2
// transport. Response bodies are returned as raw JSON; an empty or non-JSON
// body yields nil without failing the call.
//
// # Error Handling
//
// Failures are *common.Error values:
//   - 401: the session is invalidated, then common.ErrUnauthorized is returned.
//   - other non-2xx: KindServer, message from the body's "error" field or "HTTP <status>".
//   - no response at all: KindTransport.
//
// The 401 rule applies to every call regardless of which context or caller
// issued it.
package api

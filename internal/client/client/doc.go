// Package client talks to the venue booking Remote Auth API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     four auth endpoints: login, register, logout and profile.
//  2. An HTTP+JSON implementation (see HTTPClient). Every request is bound to
//     the caller's context, so a cancelled or expired context aborts the
//     request at the transport level rather than just abandoning it.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite session store and applies embedded goose migrations.
//
// # Error Handling
//
// Failures are classified so callers can tell authoritative rejections from
// transient trouble: ErrExpired (HTTP 401), ErrTimeout, ErrNetwork and
// *StatusError for any other non-2xx. Use Kind(err) or errors.Is/As.
package client

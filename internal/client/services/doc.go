// Package services contains the client-side session manager.
//
// Session owns the bearer token and the server-confirmed profile, persists
// the token in a metadata.Repository, restores it on start (Bootstrap),
// and keeps it honest with a background revalidation loop. Login, Register,
// AdoptToken, Logout and Refresh are the only ways the token or profile
// change.
//
// Failure policy in one line: only an explicit ErrExpired from the profile
// endpoint may end a restored session; timeouts, network trouble and other
// HTTP statuses leave it in place. A freshly issued token is the exception:
// if its profile cannot be fetched right away the session is torn down.
//
// Concurrency: Session is safe for use from multiple goroutines. Token and
// profile are guarded by a mutex that is never held across a network call.
// Before a slow flow clears a token it uses the store's CompareAndDelete, so
// a token installed meanwhile by a faster flow survives.
package services

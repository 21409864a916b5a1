// Package cli is the interactive venuebook client.
//
// NewApp wires configuration, the session store, the API client and the
// session manager. Run restores a saved session, keeps it revalidated in
// the background, and reads commands (login, register, logout, whoami,
// status, refresh) until the user exits.
package cli

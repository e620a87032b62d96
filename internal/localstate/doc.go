// Package localstate persists per-user client state in SQLite: display
// preferences, the registered viewer identity, and chat transcripts keyed by
// presentation session. A file lock guards against two players sharing one
// state directory.
package localstate

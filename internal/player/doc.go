// Package player runs the terminal presentation experience: the sign-up
// conversation, the section sequencer driven by the presentation socket,
// narration with word-synced text reveal, and the chat exchange that shares
// one audio slot with narration. Session mode lives in an explicit state
// machine; every viewer action is a typed command handled by a single
// controller goroutine.
package player

// Package tui is the interactive terminal presentation of a survey
// session. It renders the machine's current view and relays key presses
// to it; all survey rules live in package session.
package tui

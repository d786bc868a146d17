// Package process terminates browser process trees left behind by a render
// session.
package process

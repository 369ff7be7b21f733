// Package editor implements the raw-mode line editor of the console.
//
// A Session is one aggregate guarded by a single mutex: the edit state, the
// line buffer, the input queue fed by terminal.InputReader, a one-slot mailbox
// for asynchronous log lines, and the ctrl-c/eof/retry flags. Line is the only
// consumer of the input queue; Log may be called from any goroutine and is
// rendered above the prompt without tearing it.
package editor

// Package terminal owns the process tty for the interactive console.
//
// Features:
//   - Raw mode entry via x/term with exactly-once restoration
//   - Serialized output: each Emit is written whole under one lock
//   - Single-byte input reader goroutine with EINTR retry and EOF reporting
//   - Crash-path restoration via EmergencyReset
//
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal

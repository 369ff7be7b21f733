//go:build unix && !linux

package terminal

// flushQueues is a no-op where TCFLSH is not an ioctl; raw mode still applies
func flushQueues(fd int) error {
	return nil
}

// resetTerminalMode has no portable termios path here; EmergencyReset still emits SGR0
func resetTerminalMode() {}

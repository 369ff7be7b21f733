//go:build linux

package terminal

import "golang.org/x/sys/unix"

// flushQueues discards pending input and output on the tty (tcflush TCIOFLUSH)
func flushQueues(fd int) error {
	return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH)
}

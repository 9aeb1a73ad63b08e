//go:build linux || darwin

package ice

import (
	"time"

	"golang.org/x/sys/unix"
)

// pollReadable is the one place this core touches a raw syscall: a direct
// poll(2) over a set of OS file descriptors. It is the Go equivalent of the
// source's `select(max_fd + 1, &fds, NULL, NULL, NULL)` in
// nice_agent_recv/nice_agent_poll_read, and the only suspension point in
// the agent (spec.md §5). A negative timeout blocks until at least one fd
// is readable; a zero timeout polls without blocking.
//
// It reports readiness only -- it never reads from fds itself, so
// caller-supplied "other" fds (spec.md §4.1 poll_read) are left completely
// untouched.
func pollReadable(fds []int, timeout time.Duration) (map[int]bool, error) {
	if len(fds) == 0 {
		return nil, nil
	}

	pollFds := make([]unix.PollFd, len(fds))
	for i, fd := range fds {
		pollFds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
	}

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}

	for {
		_, err := unix.Poll(pollFds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	ready := make(map[int]bool, len(fds))
	for _, pfd := range pollFds {
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready[int(pfd.Fd)] = true
		}
	}
	return ready, nil
}

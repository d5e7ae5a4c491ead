//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type termSize struct {
	cols, rows     uint
	xpixel, ypixel uint
}

// getTermSize asks the controlling terminal for its size, falling back to
// whatever stdin reports.
func getTermSize() (termSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		if sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ); err == nil {
			return termSize{cols: uint(sz.Col), rows: uint(sz.Row), xpixel: uint(sz.Xpixel), ypixel: uint(sz.Ypixel)}, nil
		}
	}
	w, h, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return termSize{}, err
	}
	return termSize{cols: uint(w), rows: uint(h)}, nil
}

//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package main

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

type termSize struct {
	cols, rows     uint
	xpixel, ypixel uint
}

func getTermSize() (termSize, error) {
	w, h, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return termSize{}, err
	}
	return termSize{cols: uint(w), rows: uint(h)}, nil
}

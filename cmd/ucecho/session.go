// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const prompt = "Enter a string or `quit' to exit the program: "

type echoer interface {
	Echo(w io.Writer, addr int, s string) error
}

// interactive reports whether stdin is a terminal.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// session reads lines from r and echoes each through the device until the
// line "quit" or the end of input. Every round is followed by an empty line.
func session(r io.Reader, w io.Writer, e echoer, addr int, showPrompt bool) error {
	scanner := bufio.NewScanner(r)
	for {
		if showPrompt {
			fmt.Fprint(w, prompt)
		}
		if !scanner.Scan() {
			if showPrompt {
				fmt.Fprintln(w)
			}
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line != "" {
			if err := e.Echo(w, addr, line); err != nil {
				return err
			}
		}
		fmt.Fprintln(w)
		if line == "quit" {
			return nil
		}
	}
}

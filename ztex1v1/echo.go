// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"fmt"
	"io"
	"time"
)

// Echo writes s to the low speed interface at addr, reads it back and prints
// the result to w. If s spans more than one word it is read a second time
// starting one word later, which drops the first four characters.
func (z *Ztex1v1) Echo(w io.Writer, addr int, s string) error {
	if len(s) < 1 {
		return nil
	}
	n := WordCount(len(s))
	if err := checkLsiRange(addr, n); err != nil {
		return err
	}

	fmt.Fprintf(w, "Send %d words to %d ...\n", n, addr)
	if err := z.LsiSet(addr, PackWords([]byte(s))); err != nil {
		return err
	}
	time.Sleep(z.Settle)

	words, err := z.LsiGet(addr, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Read %d words starting from %d: `%s'\n",
		n, addr, UnpackWords(words)[:len(s)])

	if n > 1 {
		words, err := z.LsiGet(addr+1, n-1)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Read %d words starting from %d: `%s'\n",
			n-1, addr+1, UnpackWords(words)[:len(s)-bytesPerWord])
	}
	return nil
}

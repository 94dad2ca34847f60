// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import "encoding/binary"

const bytesPerWord = 4

// WordCount returns the number of 32-bit words needed to hold n bytes.
func WordCount(n int) int {
	return (n + bytesPerWord - 1) / bytesPerWord
}

// PackWords packs b into little endian 32-bit words. The last word is zero
// padded if len(b) is not a multiple of four.
func PackWords(b []byte) []uint32 {
	padded := make([]byte, WordCount(len(b))*bytesPerWord)
	copy(padded, b)
	words := make([]uint32, len(padded)/bytesPerWord)
	for i := range words {
		words[i] = DecodeWord(padded[i*bytesPerWord:])
	}
	return words
}

// UnpackWords is the inverse of PackWords. It always returns 4*len(w) bytes.
func UnpackWords(w []uint32) []byte {
	b := make([]byte, len(w)*bytesPerWord)
	for i, word := range w {
		binary.LittleEndian.PutUint32(b[i*bytesPerWord:], word)
	}
	return b
}

// DecodeWord decodes the first four bytes of data as a little endian word.
func DecodeWord(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// EncodeWord encodes a 32-bit word into a 4-byte little endian sequence.
func EncodeWord(w uint32) []byte {
	b := make([]byte, bytesPerWord)
	binary.LittleEndian.PutUint32(b, w)
	return b
}

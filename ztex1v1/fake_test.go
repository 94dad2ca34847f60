// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"fmt"
)

// fakeFirmware emulates the EP0 side of a ZTEX module running the default
// firmware.
type fakeFirmware struct {
	descriptor     []byte
	config         []byte
	defaultVersion byte

	lsi          [256]uint32
	lsiTransform func(uint32) uint32

	fpgaConfigured bool
	fpgaData       []byte
	fpgaDone       bool // whether DONE goes high after data was sent
	fpgaResets     int
	checksumDelta  byte // added to the reported checksum

	ram   map[uint16][]byte
	cpucs []byte

	failOn    command
	failWhen  func(cmd command, value uint16) bool
	failErr   error
	shortOn   command
	requests  []command
	lastValue map[command]uint16
	timeouts  []int
}

func newFakeFirmware(caps ...Capability) *fakeFirmware {
	return &fakeFirmware{
		descriptor:     makeDescriptor(caps...),
		defaultVersion: 1,
		fpgaDone:       true,
		ram:            map[uint16][]byte{},
		lastValue:      map[command]uint16{},
	}
}

// defaultCaps are the capabilities of a typical FX2 based USB-FPGA module.
var defaultCaps = []Capability{
	CapabilityEEPROM, CapabilityFPGA, CapabilityFX2, CapabilityMACEEPROM, CapabilityDefault,
}

func makeDescriptor(caps ...Capability) []byte {
	b := make([]byte, descriptorSize)
	b[0] = descriptorSize
	b[1] = 1
	copy(b[2:6], "ZTEX")
	copy(b[6:10], []byte{10, 13, 0, 0})
	b[10] = 3
	b[11] = 1
	for _, c := range caps {
		b[12+c.Byte] |= 1 << c.Bit
	}
	copy(b[30:40], "0123456789")
	return b
}

func makeConfigData(kind BoardKind, major, minor, variant byte, fpga string) []byte {
	b := make([]byte, configDataSize)
	copy(b[0:3], "CD0")
	b[3] = byte(kind)
	b[4] = major
	b[5] = minor
	b[6] = variant
	b[7] = 6
	copy(b[8:24], fpga)
	return b
}

func (f *fakeFirmware) check(cmd command, value uint16, timeout int) (bool, error) {
	f.requests = append(f.requests, cmd)
	f.lastValue[cmd] = value
	f.timeouts = append(f.timeouts, timeout)
	if f.failErr != nil && (cmd == f.failOn || (f.failWhen != nil && f.failWhen(cmd, value))) {
		return false, f.failErr
	}
	return cmd == f.shortOn, nil
}

func (f *fakeFirmware) controlIn(cmd command, value, index uint16, data []byte, timeout int) (int, error) {
	short, err := f.check(cmd, value, timeout)
	if err != nil {
		return 0, err
	}
	switch cmd {
	case commandDescriptor:
		copy(data, f.descriptor)
	case commandFPGAState:
		for i := range data {
			data[i] = 0
		}
		if !f.fpgaConfigured {
			data[0] = 1
		}
		data[1] = checksum(f.fpgaData) + f.checksumDelta
		copy(data[2:6], EncodeWord(uint32(len(f.fpgaData))))
		data[6] = 1
	case commandMACEEPROMRead:
		for i := range data {
			data[i] = 0xff
		}
		if f.config != nil {
			copy(data, f.config[value:])
		}
	case commandDefaultInfo:
		data[0] = f.defaultVersion
		data[1] = 0x02
		data[2] = 0x86
	case commandLsiRead:
		for i := 0; i < len(data)/bytesPerWord; i++ {
			copy(data[i*bytesPerWord:], EncodeWord(f.lsi[(int(value)+i)&lsiMaxAddress]))
		}
	default:
		return 0, fmt.Errorf("unexpected request 0x%02x", byte(cmd))
	}
	if short {
		return len(data) / 2, nil
	}
	return len(data), nil
}

func (f *fakeFirmware) controlOut(cmd command, value, index uint16, data []byte, timeout int) (int, error) {
	short, err := f.check(cmd, value, timeout)
	if err != nil {
		return 0, err
	}
	switch cmd {
	case commandFPGAReset:
		f.fpgaResets++
		f.fpgaConfigured = false
		f.fpgaData = nil
	case commandFPGASendData:
		f.fpgaData = append(f.fpgaData, data...)
		f.fpgaConfigured = f.fpgaDone
	case commandLsiWrite:
		for i := 0; i+lsiBytesPerWrite <= len(data); i += lsiBytesPerWrite {
			w := DecodeWord(data[i:])
			if f.lsiTransform != nil {
				w = f.lsiTransform(w)
			}
			f.lsi[data[i+bytesPerWord]] = w
		}
	case commandFirmwareLoad:
		if value == cpucsAddress {
			f.cpucs = append(f.cpucs, data...)
			break
		}
		f.ram[value] = append([]byte{}, data...)
	default:
		return 0, fmt.Errorf("unexpected command 0x%02x", byte(cmd))
	}
	if short {
		return len(data) / 2, nil
	}
	return len(data), nil
}

func (f *fakeFirmware) count(cmd command) int {
	n := 0
	for _, c := range f.requests {
		if c == cmd {
			n++
		}
	}
	return n
}

// upperCase mimics the ucecho HDL, which converts ASCII letters of every
// stored word to upper case.
func upperCase(w uint32) uint32 {
	b := EncodeWord(w)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return DecodeWord(b)
}

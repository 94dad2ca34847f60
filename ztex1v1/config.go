// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BoardKind identifies the module family stored in the configuration data.
type BoardKind byte

// Board kinds
const (
	KindUSBFPGAModule BoardKind = 1
	KindUSBModule     BoardKind = 2
)

var boardKinds = map[BoardKind]string{
	KindUSBFPGAModule: "USB-FPGA Module",
	KindUSBModule:     "USB-Module",
}

func (k BoardKind) String() string {
	if s, ok := boardKinds[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown board kind %d", byte(k))
}

// ConfigData is the board description stored in the MAC EEPROM.
//
//	Bytes   | Content
//	--------+-------------------------------------
//	0..2    | "CD0"
//	3       | board kind
//	4, 5    | major, minor board version
//	6       | variant letter (0 if none)
//	7       | RAM size code (0: none, else 2^n KiB)
//	8..23   | FPGA part, NUL padded
//	24..31  | reserved
//	32..127 | user data
type ConfigData struct {
	Kind     BoardKind
	Major    byte
	Minor    byte
	Variant  byte
	RAMCode  byte
	FPGA     string
	UserData [96]byte
}

var configMagic = []byte("CD0")

// parseConfigData returns nil if b holds no configuration data.
func parseConfigData(b []byte) *ConfigData {
	if len(b) < configDataSize || !bytes.Equal(b[0:3], configMagic) {
		return nil
	}
	cd := &ConfigData{
		Kind:    BoardKind(b[3]),
		Major:   b[4],
		Minor:   b[5],
		Variant: b[6],
		RAMCode: b[7],
		FPGA:    strings.TrimRight(string(b[8:24]), "\x00"),
	}
	copy(cd.UserData[:], b[32:128])
	return cd
}

// Version returns the board version, e.g. 2.13b.
func (cd *ConfigData) Version() string {
	v := fmt.Sprintf("%d.%02d", cd.Major, cd.Minor)
	if cd.Variant != 0 {
		v += string(rune(cd.Variant))
	}
	return v
}

// Name returns the full board name, e.g. "ZTEX USB-FPGA Module 2.13b".
func (cd *ConfigData) Name() string {
	return fmt.Sprintf("ZTEX %s %s", cd.Kind, cd.Version())
}

// RAMSize returns the on-board RAM size in bytes.
func (cd *ConfigData) RAMSize() int {
	if cd.RAMCode == 0 {
		return 0
	}
	return (1 << cd.RAMCode) * 1024
}

// bitstreamCandidates lists the places where the bitstream called base is
// looked for, most specific first.
func (cd *ConfigData) bitstreamCandidates(base string) []string {
	file := base + ".bit"
	generic := fmt.Sprintf("fpga-%d.%02d", cd.Major, cd.Minor)
	candidates := []string{}
	if cd.Variant != 0 {
		candidates = append(candidates, filepath.Join(generic+string(rune(cd.Variant)), file))
	}
	return append(candidates, filepath.Join(generic, file), file)
}

// DefaultBitstreamPath returns the first existing bitstream file for this
// board, or the most specific candidate if none exists.
func (cd *ConfigData) DefaultBitstreamPath(base string) string {
	candidates := cd.bitstreamCandidates(base)
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c
		}
	}
	return candidates[0]
}

func (z *Ztex1v1) readConfigData() (*ConfigData, error) {
	data := make([]byte, configDataSize)
	if _, err := z.ReadCommandFromDevice(commandMACEEPROMRead, 0, 0, data); err != nil {
		return nil, err
	}
	return parseConfigData(data), nil
}

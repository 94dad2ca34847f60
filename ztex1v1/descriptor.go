// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Capability addresses one bit of the interface capabilities field of the
// ZTEX descriptor.
type Capability struct {
	Byte int
	Bit  uint
}

// Interface capabilities
var (
	CapabilityEEPROM        = Capability{0, 0}
	CapabilityFPGA          = Capability{0, 1}
	CapabilityFlash         = Capability{0, 2}
	CapabilityFX2           = Capability{0, 3}
	CapabilityHighSpeedFPGA = Capability{0, 5}
	CapabilityMACEEPROM     = Capability{0, 6}
	CapabilityMultiFPGA     = Capability{0, 7}
	CapabilityTempSensor    = Capability{1, 0}
	CapabilityFlash2        = Capability{1, 1}
	CapabilityFX3           = Capability{1, 2}
	CapabilityDebug2        = Capability{1, 3}
	CapabilityDefault       = Capability{1, 4}
)

var capabilities = map[Capability]string{
	CapabilityEEPROM:        "EEPROM read/write",
	CapabilityFPGA:          "FPGA configuration",
	CapabilityFlash:         "Flash memory support",
	CapabilityFX2:           "FX2 microcontroller",
	CapabilityHighSpeedFPGA: "High speed FPGA configuration",
	CapabilityMACEEPROM:     "MAC EEPROM read/write",
	CapabilityMultiFPGA:     "Multi FPGA support",
	CapabilityTempSensor:    "Temperature sensor support",
	CapabilityFlash2:        "2nd Flash memory support",
	CapabilityFX3:           "FX3 microcontroller",
	CapabilityDebug2:        "Debug helper 2",
	CapabilityDefault:       "Default firmware interface",
}

func (c Capability) String() string {
	if s, ok := capabilities[c]; ok {
		return s
	}
	return fmt.Sprintf("capability %d.%d", c.Byte, c.Bit)
}

// ProductID is the 4 byte ZTEX product ID, printed as a.b.c.d.
type ProductID [4]byte

func (p ProductID) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", p[0], p[1], p[2], p[3])
}

// Descriptor is the ZTEX descriptor reported by the firmware.
//
//	Bytes  | Content
//	-------+---------------------------------
//	0      | size (40)
//	1      | descriptor version (1)
//	2..5   | "ZTEX"
//	6..9   | product ID
//	10     | firmware version
//	11     | interface version
//	12..17 | interface capabilities
//	18..29 | module reserved
//	30..39 | serial number
type Descriptor struct {
	ProductID        ProductID
	FirmwareVersion  byte
	InterfaceVersion byte
	Capabilities     [6]byte
	ModuleReserved   [12]byte
	SerialNumber     string
}

var descriptorMagic = []byte("ZTEX")

func parseDescriptor(b []byte) (Descriptor, error) {
	var d Descriptor
	if len(b) < descriptorSize || b[0] != descriptorSize {
		return d, errors.Wrapf(ErrInvalidDescriptor, "bad size %d", len(b))
	}
	if b[1] != 1 {
		return d, errors.Wrapf(ErrInvalidDescriptor, "unknown version %d", b[1])
	}
	if !bytes.Equal(b[2:6], descriptorMagic) {
		return d, errors.Wrapf(ErrInvalidDescriptor, "bad magic %q", b[2:6])
	}
	copy(d.ProductID[:], b[6:10])
	d.FirmwareVersion = b[10]
	d.InterfaceVersion = b[11]
	copy(d.Capabilities[:], b[12:18])
	copy(d.ModuleReserved[:], b[18:30])
	d.SerialNumber = strings.TrimRight(string(b[30:40]), "\x00")
	return d, nil
}

// HasCapability reports whether the firmware announces c.
func (d Descriptor) HasCapability(c Capability) bool {
	if c.Byte < 0 || c.Byte >= len(d.Capabilities) {
		return false
	}
	return d.Capabilities[c.Byte]&(1<<c.Bit) != 0
}

// CheckCapability returns an error wrapping ErrCapability if c is missing.
func (d Descriptor) CheckCapability(c Capability) error {
	if d.HasCapability(c) {
		return nil
	}
	return errors.Wrap(ErrCapability, c.String())
}

// CapabilityList lists the announced capabilities in bit order.
func (d Descriptor) CapabilityList() []Capability {
	var caps []Capability
	for i := range d.Capabilities {
		for bit := uint(0); bit < 8; bit++ {
			c := Capability{i, bit}
			if d.HasCapability(c) {
				caps = append(caps, c)
			}
		}
	}
	return caps
}

func (z *Ztex1v1) readDescriptor() error {
	data := make([]byte, descriptorSize)
	if _, err := z.ReadCommandFromDevice(commandDescriptor, 0, 0, data); err != nil {
		return err
	}
	d, err := parseDescriptor(data)
	if err != nil {
		return err
	}
	if d.InterfaceVersion != 1 {
		return errors.Wrapf(ErrInvalidDescriptor,
			"interface version %d, expected 1", d.InterfaceVersion)
	}
	z.Descriptor = d
	return nil
}

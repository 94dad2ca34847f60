// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"io"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// cpuHold writes the FX2 CPUCS register. While held, the 8051 core is in
// reset and its RAM can be written.
func (z *Ztex1v1) cpuHold(hold bool) error {
	var v byte
	if hold {
		v = 1
	}
	_, err := z.SendCommandToDevice(commandFirmwareLoad, cpucsAddress, 0, []byte{v})
	return err
}

func (z *Ztex1v1) checkFX2() error {
	if z.Descriptor.HasCapability(CapabilityFX3) {
		return errors.Wrap(ErrUnsupported, "EZ-USB FX3")
	}
	return nil
}

// ResetEzUSB resets the EZ-USB microcontroller by cycling the CPU reset bit.
// It is not available on FX3 based modules.
func (z *Ztex1v1) ResetEzUSB() error {
	if err := z.checkFX2(); err != nil {
		return err
	}
	if err := z.cpuHold(true); err != nil {
		return errors.Wrap(err, "error holding EZ-USB CPU")
	}
	if err := z.cpuHold(false); err != nil {
		return errors.Wrap(err, "error releasing EZ-USB CPU")
	}
	return nil
}

// UploadFirmware loads an Intel HEX image into the EZ-USB RAM and starts it.
// The device disconnects and renumerates afterwards, so it must be closed
// and the bus scanned again.
func (z *Ztex1v1) UploadFirmware(r io.Reader) error {
	if err := z.checkFX2(); err != nil {
		return err
	}
	ihex := gohex.NewMemory()
	if err := ihex.ParseIntelHex(r); err != nil {
		return errors.Wrap(err, "error parsing firmware")
	}
	segments := ihex.GetDataSegments()
	if len(segments) == 0 {
		return errors.New("firmware image is empty")
	}

	var total int
	for _, segment := range segments {
		addr := int(segment.Address)
		if addr+len(segment.Data) > 0x10000 {
			return errors.Errorf("firmware segment at 0x%04x exceeds the 64 KiB address space", addr)
		}
		total += len(segment.Data)
	}

	if err := z.cpuHold(true); err != nil {
		return errors.Wrap(err, "error holding EZ-USB CPU")
	}
	if err := z.writeSegments(segments); err != nil {
		// Never leave the CPU halted.
		if relErr := z.cpuHold(false); relErr != nil {
			return errors.Wrapf(err, "EZ-USB CPU left in reset (%s)", relErr)
		}
		return err
	}
	log.Debugf("Uploaded %d firmware bytes in %d segments", total, len(segments))
	if err := z.cpuHold(false); err != nil {
		return errors.Wrap(err, "error releasing EZ-USB CPU")
	}
	return nil
}

func (z *Ztex1v1) writeSegments(segments []gohex.DataSegment) error {
	for _, segment := range segments {
		addr := int(segment.Address)
		for off := 0; off < len(segment.Data); off += firmwareChunkSize {
			end := off + firmwareChunkSize
			if end > len(segment.Data) {
				end = len(segment.Data)
			}
			if _, err := z.SendCommandToDevice(
				commandFirmwareLoad, uint16(addr+off), 0, segment.Data[off:end]); err != nil {
				return errors.Wrapf(err, "error writing firmware at 0x%04x", addr+off)
			}
		}
	}
	return nil
}

// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultInfo describes the default firmware running on the module.
type DefaultInfo struct {
	Version     byte
	OutEndpoint byte
	InEndpoint  byte
}

// DefaultInfo reads the default firmware information.
func (z *Ztex1v1) DefaultInfo() (DefaultInfo, error) {
	if err := z.Descriptor.CheckCapability(CapabilityDefault); err != nil {
		return DefaultInfo{}, err
	}
	data := make([]byte, defaultInfoSize)
	if _, err := z.ReadCommandFromDevice(commandDefaultInfo, 0, 0, data); err != nil {
		return DefaultInfo{}, err
	}
	return DefaultInfo{
		Version:     data[0],
		OutEndpoint: data[1],
		InEndpoint:  data[2],
	}, nil
}

// CheckDefaultVersion checks that the default firmware is present and at
// least version min.
func (z *Ztex1v1) CheckDefaultVersion(min int) error {
	info, err := z.DefaultInfo()
	if err != nil {
		return err
	}
	if int(info.Version) < min {
		return errors.Wrapf(ErrFirmwareVersion,
			"default firmware version %d, need at least %d", info.Version, min)
	}
	return nil
}

func checkLsiRange(addr, n int) error {
	if addr < 0 || addr > lsiMaxAddress || n < 0 || addr+n-1 > lsiMaxAddress {
		return errors.Wrapf(ErrAddressRange, "%d words at %d", n, addr)
	}
	return nil
}

// LsiSet writes words to the low speed interface starting at addr. The
// address is incremented after every word.
func (z *Ztex1v1) LsiSet(addr int, words []uint32) error {
	if len(words) == 0 {
		return nil
	}
	if err := checkLsiRange(addr, len(words)); err != nil {
		return err
	}
	data := make([]byte, len(words)*lsiBytesPerWrite)
	for i, w := range words {
		b := data[i*lsiBytesPerWrite:]
		copy(b, EncodeWord(w))
		b[bytesPerWord] = byte(addr + i)
	}
	log.Debugf("LSI write: %d words at %d", len(words), addr)
	_, err := z.SendCommandToDevice(commandLsiWrite, 0, 0, data)
	return err
}

// LsiGet reads n words from the low speed interface starting at addr.
func (z *Ztex1v1) LsiGet(addr, n int) ([]uint32, error) {
	if n == 0 {
		return []uint32{}, nil
	}
	if err := checkLsiRange(addr, n); err != nil {
		return nil, err
	}
	data := make([]byte, n*bytesPerWord)
	log.Debugf("LSI read: %d words at %d", n, addr)
	if _, err := z.ReadCommandFromDevice(commandLsiRead, uint16(addr), 0, data); err != nil {
		return nil, err
	}
	words := make([]uint32, n)
	for i := range words {
		words[i] = DecodeWord(data[i*bytesPerWord:])
	}
	return words, nil
}

// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// FPGAState is the FPGA status reported by the firmware.
type FPGAState struct {
	Configured  bool
	Checksum    byte
	Bytes       uint32
	InitB       byte
	FlashResult byte
	BitSwap     bool
}

func parseFPGAState(b []byte) FPGAState {
	return FPGAState{
		Configured:  b[0] == 0,
		Checksum:    b[1],
		Bytes:       DecodeWord(b[2:6]),
		InitB:       b[6],
		FlashResult: b[7],
		BitSwap:     b[8] != 0,
	}
}

func (s FPGAState) String() string {
	configured := "unconfigured"
	if s.Configured {
		configured = "configured"
	}
	return fmt.Sprintf("%s, %d bytes, checksum 0x%02x, INIT_B 0x%02x, flash result %d, bit swap %t",
		configured, s.Bytes, s.Checksum, s.InitB, s.FlashResult, s.BitSwap)
}

// BitOrder selects whether the bits of every bitstream byte are reversed
// before upload.
type BitOrder int

// Bit orders
const (
	BitOrderAuto BitOrder = iota
	BitOrderSwap
	BitOrderNoSwap
)

var bitOrders = map[BitOrder]string{
	BitOrderAuto:   "auto",
	BitOrderSwap:   "swap",
	BitOrderNoSwap: "no swap",
}

func (o BitOrder) String() string {
	return bitOrders[o]
}

var (
	syncWord        = []byte{0xaa, 0x99, 0x55, 0x66}
	swappedSyncWord = []byte{0x55, 0x99, 0xaa, 0x66}
)

// syncSearchLimit bounds the search for the sync word; it always sits in
// the bitstream header.
const syncSearchLimit = 64 * 1024

// detectBitOrder looks for the Xilinx sync word. The firmware shifts bytes
// out LSB first, so a plain bitstream needs its bits swapped.
func detectBitOrder(data []byte) BitOrder {
	head := data
	if len(head) > syncSearchLimit {
		head = head[:syncSearchLimit]
	}
	if bytes.Contains(head, syncWord) {
		return BitOrderSwap
	}
	if bytes.Contains(head, swappedSyncWord) {
		return BitOrderNoSwap
	}
	log.Warn("Unable to determine bitstream bit order: no sync word found, assuming swap")
	return BitOrderSwap
}

func swapBits(data []byte) {
	for i, b := range data {
		data[i] = bits.Reverse8(b)
	}
}

func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// FPGAState reads the FPGA status.
func (z *Ztex1v1) FPGAState() (FPGAState, error) {
	if err := z.Descriptor.CheckCapability(CapabilityFPGA); err != nil {
		return FPGAState{}, err
	}
	data := make([]byte, fpgaStateSize)
	if _, err := z.ReadCommandFromDevice(commandFPGAState, 0, 0, data); err != nil {
		return FPGAState{}, err
	}
	return parseFPGAState(data), nil
}

// ResetFPGA puts the FPGA into configuration mode.
func (z *Ztex1v1) ResetFPGA() error {
	if err := z.Descriptor.CheckCapability(CapabilityFPGA); err != nil {
		return err
	}
	_, err := z.SendCommandToDevice(commandFPGAReset, 0, 0, nil)
	return err
}

// ConfigureFPGA uploads the bitstream read from r through endpoint 0 and
// returns the time it took. size is only used to preallocate and may be 0.
// An already configured FPGA is left alone unless force is set.
func (z *Ztex1v1) ConfigureFPGA(r io.Reader, size int64, force bool, order BitOrder) (time.Duration, error) {
	state, err := z.FPGAState()
	if err != nil {
		return 0, err
	}
	if state.Configured && !force {
		return 0, ErrAlreadyConfigured
	}

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(r); err != nil {
		return 0, errors.Wrap(err, "error reading bitstream")
	}
	data := buf.Bytes()
	if len(data) == 0 {
		return 0, errors.New("empty bitstream")
	}
	if order == BitOrderAuto {
		order = detectBitOrder(data)
	}
	log.Debugf("Bitstream: %d bytes, bit order: %s", len(data), order)
	if order == BitOrderSwap {
		swapBits(data)
	}

	start := time.Now()
	if err := z.ResetFPGA(); err != nil {
		return 0, err
	}

	var bar *pb.ProgressBar
	if len(data) > fpgaChunkSize {
		bar = pb.New(len(data)).SetUnits(pb.U_BYTES)
		bar.Output = os.Stderr
		bar.ShowSpeed = true
		bar.Start()
	}
	for off := 0; off < len(data); off += fpgaChunkSize {
		end := off + fpgaChunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := z.SendCommandToDevice(commandFPGASendData, 0, 0, data[off:end]); err != nil {
			if bar != nil {
				bar.Finish()
			}
			return 0, errors.Wrapf(err, "FPGA configuration failed at byte %d", off)
		}
		if bar != nil {
			bar.Add(end - off)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	state, err = z.FPGAState()
	if err != nil {
		return 0, err
	}
	if !state.Configured {
		return 0, errors.Errorf("FPGA configuration failed: DONE pin does not go high (%s)", state)
	}
	if sum := checksum(data); state.Checksum != sum {
		return 0, errors.Errorf("FPGA configuration failed: checksum 0x%02x, expected 0x%02x",
			state.Checksum, sum)
	}
	return time.Since(start), nil
}

// ConfigureFPGAFile uploads the bitstream stored in path.
func (z *Ztex1v1) ConfigureFPGAFile(path string, force bool) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "error opening bitstream")
	}
	defer f.Close()
	var size int64
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	return z.ConfigureFPGA(f, size, force, BitOrderAuto)
}

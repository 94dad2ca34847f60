// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

type command byte

// Vendor requests (device to host) and vendor commands (host to device)
// understood by the ZTEX firmware kit.
const (
	// EZ-USB internal RAM access, handled by the chip itself
	commandFirmwareLoad command = 0xa0
	// ZTEX descriptor
	commandDescriptor command = 0x22
	// FPGA configuration
	commandFPGAState     command = 0x30
	commandFPGAReset     command = 0x31
	commandFPGASendData  command = 0x32
	commandMACEEPROMRead command = 0x3b
	// Default firmware
	commandLsiWrite    command = 0x62
	commandLsiRead     command = 0x63
	commandDefaultInfo command = 0x64
)

var commands = map[command]string{
	commandFirmwareLoad:  "Firmware load",
	commandDescriptor:    "Read ZTEX descriptor",
	commandFPGAState:     "Get FPGA state",
	commandFPGAReset:     "Reset FPGA",
	commandFPGASendData:  "Send FPGA data",
	commandMACEEPROMRead: "Read MAC EEPROM",
	commandLsiWrite:      "LSI write",
	commandLsiRead:       "LSI read",
	commandDefaultInfo:   "Get default firmware info",
}

func (c command) String() string {
	return commands[c]
}

const (
	descriptorSize  = 40
	fpgaStateSize   = 9
	configDataSize  = 128
	defaultInfoSize = 4

	// maxEP0Transfer is the size of the firmware's EP0 buffer; no single
	// control transfer may exceed it.
	maxEP0Transfer = 4096
	// fpgaChunkSize is the payload of one commandFPGASendData transfer.
	fpgaChunkSize = 2048
	// firmwareChunkSize is the payload of one commandFirmwareLoad transfer.
	firmwareChunkSize = 4096

	// cpucsAddress is the FX2 CPU control and status register.
	cpucsAddress = 0xe600

	lsiBytesPerWrite = 5
	lsiMaxAddress    = 0xff
)

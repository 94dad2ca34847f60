// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import "github.com/pkg/errors"

// Errors returned by the device layer. Use errors.Cause to compare.
var (
	ErrInvalidDescriptor = errors.New("invalid ZTEX descriptor")
	ErrCapability        = errors.New("capability not supported")
	ErrAlreadyConfigured = errors.New("FPGA already configured")
	ErrAddressRange      = errors.New("LSI address out of range")
	ErrFirmwareVersion   = errors.New("firmware version too old")
	ErrUnsupported       = errors.New("operation not supported by this module")
	ErrShortTransfer     = errors.New("short control transfer")
	ErrNoDevice          = errors.New("no such device")
)

// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"os"
	"time"

	"github.com/gotmc/ztex/ztex1v1"
	log "github.com/sirupsen/logrus"
)

const millisecondDelay = 100

func main() {
	ctx, err := ztex1v1.Init()
	if err != nil {
		log.Fatal("Couldn't create USB context. Ending now.")
	}
	defer ctx.Close()

	// Open the ZTEX module
	z, err := ztex1v1.NewViaSN(ctx, "04A32DB2A7")
	if err != nil {
		log.Fatalf("Something bad getting S/N happened: %s", err)
	}

	// Print some info about the device
	log.Printf("Vendor ID = 0x%x / Product ID = 0x%x\n", z.DeviceDescriptor.VendorID,
		z.DeviceDescriptor.ProductID)
	log.Printf("Serial number via ZTEX descriptor = %s", z.Descriptor.SerialNumber)
	log.Printf("ZTEX product ID = %s", z.Descriptor.ProductID)
	if z.Config != nil {
		log.Printf("Module = %s, default bitstream = %s", z.Config.Name(),
			z.Config.DefaultBitstreamPath("ucecho"))
	}

	// Get FPGA state
	state, err := z.FPGAState()
	if err != nil {
		log.Fatalf("Error reading FPGA state: %s", err)
	}
	log.Printf("FPGA state = %s", state)

	// Echo a string through the FPGA
	if err := z.CheckDefaultVersion(1); err != nil {
		log.Fatalf("Default firmware missing: %s", err)
	}
	if err := z.Echo(os.Stdout, 10, "hello ztex"); err != nil {
		log.Printf("Error echoing: %s", err)
	}

	// Close the module
	time.Sleep(millisecondDelay * time.Millisecond)
	z.Close()
}

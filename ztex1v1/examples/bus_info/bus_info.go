// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"os"

	"github.com/gotmc/ztex/ztex1v1"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, err := ztex1v1.Init()
	if err != nil {
		log.Fatal("Couldn't create USB context. Ending now.")
	}
	defer ctx.Close()

	bus, err := ztex1v1.ScanBus(ctx, ztex1v1.VendorID, ztex1v1.ProductID)
	if err != nil {
		log.Fatalf("Error scanning the bus: %s", err)
	}
	defer bus.Close()
	log.Printf("Found %d ZTEX devices", bus.NumberOfDevices())
	bus.PrintBus(os.Stdout)

	for i := 0; i < bus.NumberOfDevices(); i++ {
		dev, err := bus.Device(i)
		if err != nil {
			log.Fatal(err)
		}
		z, err := ztex1v1.Open(dev)
		if err != nil {
			log.Printf("Device %d: %s", i, err)
			continue
		}
		log.Printf("Device %d: product %s, firmware version %d, interface version %d",
			i, z.Descriptor.ProductID, z.Descriptor.FirmwareVersion, z.Descriptor.InterfaceVersion)
		log.Printf("Capabilities: %v", z.Descriptor.CapabilityList())
		if z.Config != nil {
			log.Printf("%s, FPGA %s, %d bytes RAM", z.Config.Name(), z.Config.FPGA, z.Config.RAMSize())
		}
		if state, err := z.FPGAState(); err == nil {
			log.Printf("FPGA state: %s", state)
		}
		if info, err := z.DefaultInfo(); err == nil {
			log.Printf("Default firmware version %d", info.Version)
		}
		z.Close()
	}
}

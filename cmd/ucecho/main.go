// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command ucecho configures a ZTEX USB-FPGA module with the ucecho design and
// echoes strings typed on stdin through the FPGA, which returns them in upper
// case.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gotmc/libusb"
	"github.com/gotmc/ztex/ztex1v1"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const bitstreamName = "ucecho"

func fatalf(format string, a ...interface{}) {
	fmt.Printf("Error: "+format+"\n", a...)
	os.Exit(1)
}

func fatalUsage(fs *pflag.FlagSet, format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	usage(fs)
	os.Exit(2)
}

func usage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Usage:
	ucecho [options]

Options:
`)
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}

func setupLogging(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func main() {
	fs := newFlagSet()
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		fatalUsage(fs, "%s", err)
	}
	if fs.NArg() > 0 {
		fatalUsage(fs, "Invalid parameter: %s", fs.Arg(0))
	}
	if help, _ := fs.GetBool("help"); help {
		usage(fs)
		os.Exit(0)
	}
	verbose, _ := fs.GetBool("verbose")
	setupLogging(verbose)

	opts, err := loadConfig(viper.New(), fs)
	if err != nil {
		fatalf("%s", err)
	}
	setupLogging(opts.Verbose)

	if err := run(opts); err != nil {
		fatalf("%s", err)
	}
}

func run(opts *options) error {
	ctx, err := ztex1v1.Init()
	if err != nil {
		return errors.Wrap(err, "error initializing libusb")
	}
	defer ctx.Close()

	bus, err := ztex1v1.ScanBus(ctx, opts.VendorID, opts.ProductID)
	if err != nil {
		return err
	}
	if opts.PrintBus {
		bus.PrintBus(os.Stdout)
		return nil
	}
	if bus.NumberOfDevices() == 0 {
		fmt.Fprintln(os.Stderr, "No devices found")
		return nil
	}

	if opts.Firmware != "" {
		if err := uploadFirmware(bus, opts); err != nil {
			return err
		}
		bus.Close()
		if bus, err = rescan(ctx, opts); err != nil {
			return err
		}
	}

	dev, err := selectDevice(bus, opts)
	if err != nil {
		return err
	}
	z, err := ztex1v1.OpenTimeout(dev, opts.Timeout)
	if err != nil {
		return err
	}
	bus.Close()
	defer z.Close()
	z.Settle = opts.Settle

	if opts.Reset {
		fmt.Println("Reset EZ-USB")
		err = z.ResetEzUSB()
	} else {
		err = z.ResetDevice()
	}
	if err != nil {
		return err
	}

	if err := z.CheckDefaultVersion(1); err != nil {
		return err
	}
	if err := configure(z, opts); err != nil {
		return err
	}
	return session(os.Stdin, os.Stdout, z, opts.Address, opts.Prompt || interactive())
}

// selectDevice picks a device from the scanned bus by serial number or,
// without one, by its number.
func selectDevice(bus *ztex1v1.Bus, opts *options) (*libusb.Device, error) {
	n := opts.Device
	if opts.Serial != "" {
		var err error
		if n, err = bus.IndexBySN(opts.Serial); err != nil {
			return nil, err
		}
	}
	return bus.Device(n)
}

// uploadFirmware loads the firmware into the selected EZ-USB. The chip need
// not run ZTEX firmware yet, so no ZTEX descriptor is read.
func uploadFirmware(bus *ztex1v1.Bus, opts *options) error {
	f, err := os.Open(opts.Firmware)
	if err != nil {
		return errors.Wrap(err, "error opening firmware")
	}
	defer f.Close()

	dev, err := selectDevice(bus, opts)
	if err != nil {
		return err
	}
	z, err := ztex1v1.OpenEzUSB(dev, opts.Timeout)
	if err != nil {
		return err
	}
	err = z.UploadFirmware(f)
	z.Close()
	if err != nil {
		return err
	}
	log.Infof("Firmware %s uploaded, waiting %s for the device to renumerate", opts.Firmware, opts.Renumerate)
	time.Sleep(opts.Renumerate)
	return nil
}

// rescan looks for the renumerated device. A blank EZ-USB comes back with
// the ZTEX IDs once ZTEX firmware runs, so those are tried when the
// configured IDs find nothing.
func rescan(ctx *libusb.Context, opts *options) (*ztex1v1.Bus, error) {
	bus, err := ztex1v1.ScanBus(ctx, opts.VendorID, opts.ProductID)
	if err != nil || bus.NumberOfDevices() > 0 {
		return bus, err
	}
	if opts.VendorID == ztex1v1.VendorID && opts.ProductID == ztex1v1.ProductID {
		return nil, errors.Wrap(ztex1v1.ErrNoDevice, "device did not come back after the firmware upload")
	}
	log.Infof("No device with ID %04x:%04x after the firmware upload, trying %04x:%04x",
		opts.VendorID, opts.ProductID, ztex1v1.VendorID, ztex1v1.ProductID)
	return ztex1v1.ScanBus(ctx, ztex1v1.VendorID, ztex1v1.ProductID)
}

// configure loads the bitstream into the FPGA. Without an explicit path the
// bitstream is looked up from the configuration data of the module.
func configure(z *ztex1v1.Ztex1v1, opts *options) error {
	path := opts.Bitstream
	name := fmt.Sprintf("ZTEX device %s", z.Descriptor.ProductID)
	if z.Config != nil {
		name = z.Config.Name()
		if path == "" {
			path = z.Config.DefaultBitstreamPath(bitstreamName)
		}
	} else if path == "" {
		return errors.New("Invalid configuration data")
	}

	fmt.Printf("Found %s,  using bitstream %s\n", name, path)
	d, err := z.ConfigureFPGAFile(path, opts.Force)
	if errors.Cause(err) == ztex1v1.ErrAlreadyConfigured {
		fmt.Println("FPGA already configured")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("FPGA configuration time: %d ms\n", d.Milliseconds())
	return nil
}

// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"time"

	"github.com/gotmc/ztex/ztex1v1"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// options holds the resolved settings of one run.
type options struct {
	Device     int
	Serial     string
	Reset      bool
	PrintBus   bool
	Bitstream  string
	Firmware   string
	Address    int
	Force      bool
	Verbose    bool
	Prompt     bool
	VendorID   uint16
	ProductID  uint16
	Timeout    int
	Settle     time.Duration
	Renumerate time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vendor_id", ztex1v1.VendorID)
	v.SetDefault("product_id", ztex1v1.ProductID)
	v.SetDefault("timeout_ms", 1500)
	v.SetDefault("settle_ms", 10)
	v.SetDefault("renumerate_ms", 1500)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ucecho", pflag.ContinueOnError)
	fs.IntP("device", "d", 0, "Device number on the bus")
	fs.StringP("serial", "s", "", "Select the device by serial number")
	fs.BoolP("reset", "r", false, "Reset the EZ-USB instead of a USB port reset")
	fs.BoolP("print-bus", "p", false, "Print bus info and exit")
	fs.StringP("bitstream", "b", "", "Bitstream file (default from the configuration data)")
	fs.StringP("firmware", "f", "", "Upload this Intel HEX firmware first (EZ-USB FX2 only; the chip must enumerate as vendor_id:product_id)")
	fs.IntP("address", "a", 10, "LSI start address used by the echo")
	fs.Bool("force", true, "Reconfigure an already configured FPGA")
	fs.Bool("prompt", false, "Always print the prompt")
	fs.StringP("config", "c", "", "Config file")
	fs.BoolP("verbose", "v", false, "Debug logging")
	fs.BoolP("help", "h", false, "Print this help")
	fs.SortFlags = false
	return fs
}

// loadConfig merges flags, environment, config file and defaults, in that
// order of precedence.
func loadConfig(v *viper.Viper, fs *pflag.FlagSet) (*options, error) {
	setDefaults(v)
	v.SetEnvPrefix("ucecho")
	v.AutomaticEnv()
	for _, name := range []string{"device", "serial", "reset", "bitstream", "firmware",
		"address", "force", "verbose", "prompt"} {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "error binding flag %s", name)
		}
	}

	if cfgFile, _ := fs.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", cfgFile)
		}
	} else {
		v.SetConfigName("ucecho")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ztex")
		v.AddConfigPath("/etc/ztex")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "error reading config file")
			}
		}
	}
	if f := v.ConfigFileUsed(); f != "" {
		log.Debugf("Using config file %s", f)
	}

	printBus, _ := fs.GetBool("print-bus")
	opts := &options{
		Device:     v.GetInt("device"),
		Serial:     v.GetString("serial"),
		Reset:      v.GetBool("reset"),
		PrintBus:   printBus,
		Bitstream:  v.GetString("bitstream"),
		Firmware:   v.GetString("firmware"),
		Address:    v.GetInt("address"),
		Force:      v.GetBool("force"),
		Verbose:    v.GetBool("verbose"),
		Prompt:     v.GetBool("prompt"),
		VendorID:   uint16(v.GetUint("vendor_id")),
		ProductID:  uint16(v.GetUint("product_id")),
		Timeout:    v.GetInt("timeout_ms"),
		Settle:     time.Duration(v.GetInt("settle_ms")) * time.Millisecond,
		Renumerate: time.Duration(v.GetInt("renumerate_ms")) * time.Millisecond,
	}
	if opts.Device < 0 {
		return nil, errors.Errorf("invalid device number %d", opts.Device)
	}
	return opts, nil
}

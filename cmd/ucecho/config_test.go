// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	c "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

const testConfig = `device = 2
bitstream = "fpga/ucecho.bit"
address = 20
settle_ms = 50
`

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "ucecho")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	cfgFile := filepath.Join(dir, "ucecho.toml")
	if err := ioutil.WriteFile(cfgFile, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}

	c.Convey("Given the ucecho command line", t, func() {
		fs := newFlagSet()

		c.Convey("When only an empty config file is used", func() {
			empty := filepath.Join(dir, "empty.toml")
			c.So(ioutil.WriteFile(empty, nil, 0644), c.ShouldBeNil)
			c.So(fs.Parse([]string{"--config", empty}), c.ShouldBeNil)
			opts, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the defaults apply", func() {
				c.So(opts.Device, c.ShouldEqual, 0)
				c.So(opts.Address, c.ShouldEqual, 10)
				c.So(opts.Force, c.ShouldBeTrue)
				c.So(opts.Prompt, c.ShouldBeFalse)
				c.So(opts.VendorID, c.ShouldEqual, uint16(0x221a))
				c.So(opts.ProductID, c.ShouldEqual, uint16(0x0100))
				c.So(opts.Timeout, c.ShouldEqual, 1500)
				c.So(opts.Settle, c.ShouldEqual, 10*time.Millisecond)
			})
		})

		c.Convey("When a config file is given", func() {
			c.So(fs.Parse([]string{"-c", cfgFile}), c.ShouldBeNil)
			opts, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then its values override the defaults", func() {
				c.So(opts.Device, c.ShouldEqual, 2)
				c.So(opts.Bitstream, c.ShouldEqual, "fpga/ucecho.bit")
				c.So(opts.Address, c.ShouldEqual, 20)
				c.So(opts.Settle, c.ShouldEqual, 50*time.Millisecond)
			})
		})

		c.Convey("When flags are given along with the config file", func() {
			c.So(fs.Parse([]string{"-c", cfgFile, "-d", "1", "--address=30", "--force=false", "-r"}), c.ShouldBeNil)
			opts, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the flags win", func() {
				c.So(opts.Device, c.ShouldEqual, 1)
				c.So(opts.Address, c.ShouldEqual, 30)
				c.So(opts.Force, c.ShouldBeFalse)
				c.So(opts.Reset, c.ShouldBeTrue)
				c.So(opts.Bitstream, c.ShouldEqual, "fpga/ucecho.bit")
			})
		})

		c.Convey("When the environment sets a value", func() {
			os.Setenv("UCECHO_SERIAL", "04A32DB2A7")
			defer os.Unsetenv("UCECHO_SERIAL")
			c.So(fs.Parse([]string{"-c", cfgFile}), c.ShouldBeNil)
			opts, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldBeNil)
			c.So(opts.Serial, c.ShouldEqual, "04A32DB2A7")
		})

		c.Convey("When the config file does not exist", func() {
			c.So(fs.Parse([]string{"-c", filepath.Join(dir, "missing.toml")}), c.ShouldBeNil)
			_, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldNotBeNil)
		})

		c.Convey("When the device number is negative", func() {
			c.So(fs.Parse([]string{"-c", cfgFile, "--device=-1"}), c.ShouldBeNil)
			_, err := loadConfig(viper.New(), fs)
			c.So(err, c.ShouldNotBeNil)
		})

		c.Convey("When an unknown flag is given", func() {
			c.So(fs.Parse([]string{"--bogus"}), c.ShouldNotBeNil)
		})
	})
}

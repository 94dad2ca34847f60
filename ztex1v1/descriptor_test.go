// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"testing"

	"github.com/pkg/errors"
	c "github.com/smartystreets/goconvey/convey"
)

func TestParseDescriptor(t *testing.T) {
	c.Convey("Given a valid ZTEX descriptor", t, func() {
		b := makeDescriptor(CapabilityFPGA, CapabilityDefault)
		c.Convey("When it is parsed", func() {
			d, err := parseDescriptor(b)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the fields are decoded", func() {
				c.So(d.ProductID.String(), c.ShouldEqual, "10.13.0.0")
				c.So(d.FirmwareVersion, c.ShouldEqual, byte(3))
				c.So(d.InterfaceVersion, c.ShouldEqual, byte(1))
				c.So(d.SerialNumber, c.ShouldEqual, "0123456789")
			})
			c.Convey("Then the capabilities are reported", func() {
				c.So(d.HasCapability(CapabilityFPGA), c.ShouldBeTrue)
				c.So(d.HasCapability(CapabilityDefault), c.ShouldBeTrue)
				c.So(d.HasCapability(CapabilityFX3), c.ShouldBeFalse)
				c.So(d.CheckCapability(CapabilityFPGA), c.ShouldBeNil)
				c.So(d.CapabilityList(), c.ShouldResemble,
					[]Capability{CapabilityFPGA, CapabilityDefault})
			})
			c.Convey("Then a missing capability names itself", func() {
				err := d.CheckCapability(CapabilityFlash)
				c.So(errors.Cause(err), c.ShouldEqual, ErrCapability)
				c.So(err.Error(), c.ShouldContainSubstring, "Flash memory support")
			})
		})
	})

	c.Convey("Given broken descriptors", t, func() {
		badSize := makeDescriptor()
		badSize[0] = 39
		badVersion := makeDescriptor()
		badVersion[1] = 2
		badMagic := makeDescriptor()
		copy(badMagic[2:6], "ZTEC")
		for _, b := range [][]byte{badSize, badVersion, badMagic, {40, 1}} {
			_, err := parseDescriptor(b)
			c.So(errors.Cause(err), c.ShouldEqual, ErrInvalidDescriptor)
		}
	})
}

func TestCapabilityString(t *testing.T) {
	c.Convey("Given an unknown capability bit", t, func() {
		c.So(Capability{5, 7}.String(), c.ShouldEqual, "capability 5.7")
		c.So(Capability{9, 0}.String(), c.ShouldEqual, "capability 9.0")
		c.So(Descriptor{}.HasCapability(Capability{9, 0}), c.ShouldBeFalse)
	})
}

func TestOpenReadsDescriptorAndConfig(t *testing.T) {
	c.Convey("Given a module with MAC EEPROM configuration data", t, func() {
		fw := newFakeFirmware(defaultCaps...)
		fw.config = makeConfigData(KindUSBFPGAModule, 2, 13, 'b', "XC7A35T")
		c.Convey("When it is opened", func() {
			z, err := newWithController(fw, defaultTimeout)
			c.So(err, c.ShouldBeNil)
			c.Convey("Then the config data is available", func() {
				c.So(z.Config, c.ShouldNotBeNil)
				c.So(z.Config.Name(), c.ShouldEqual, "ZTEX USB-FPGA Module 2.13b")
			})
		})
	})

	c.Convey("Given a module with an empty MAC EEPROM", t, func() {
		fw := newFakeFirmware(defaultCaps...)
		z, err := newWithController(fw, defaultTimeout)
		c.So(err, c.ShouldBeNil)
		c.So(z.Config, c.ShouldBeNil)
	})

	c.Convey("Given a module without MAC EEPROM", t, func() {
		fw := newFakeFirmware(CapabilityFPGA)
		z, err := newWithController(fw, defaultTimeout)
		c.So(err, c.ShouldBeNil)
		c.So(z.Config, c.ShouldBeNil)
		c.So(fw.count(commandMACEEPROMRead), c.ShouldEqual, 0)
	})

	c.Convey("Given firmware implementing another interface version", t, func() {
		fw := newFakeFirmware(defaultCaps...)
		fw.descriptor[11] = 2
		_, err := newWithController(fw, defaultTimeout)
		c.So(errors.Cause(err), c.ShouldEqual, ErrInvalidDescriptor)
	})

	c.Convey("Given a custom control transfer timeout", t, func() {
		fw := newFakeFirmware(defaultCaps...)
		z, err := newWithController(fw, 250)
		c.So(err, c.ShouldBeNil)
		c.Convey("Then the reads done while opening already use it", func() {
			c.So(fw.timeouts, c.ShouldNotBeEmpty)
			for _, timeout := range fw.timeouts {
				c.So(timeout, c.ShouldEqual, 250)
			}
		})
		c.Convey("Then later transfers follow changes to Timeout", func() {
			z.Timeout = 40
			_, err := z.DefaultInfo()
			c.So(err, c.ShouldBeNil)
			c.So(fw.timeouts[len(fw.timeouts)-1], c.ShouldEqual, 40)
		})
	})

	c.Convey("Given a device that answers short", t, func() {
		fw := newFakeFirmware(defaultCaps...)
		fw.shortOn = commandDescriptor
		_, err := newWithController(fw, defaultTimeout)
		c.So(errors.Cause(err), c.ShouldEqual, ErrShortTransfer)
	})
}

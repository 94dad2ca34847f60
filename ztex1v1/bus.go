// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"fmt"
	"io"

	"github.com/google/gousb"
	"github.com/google/gousb/usbid"
	"github.com/gotmc/libusb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Bus is the list of ZTEX devices found on the USB bus. Listing a device
// does not open it.
type Bus struct {
	VendorID  uint16
	ProductID uint16
	devices   []*libusb.Device
	serialOf  func(dev *libusb.Device) (string, error)
}

// ScanBus lists all devices with the given vendor and product ID.
func ScanBus(ctx *libusb.Context, vendorID, productID uint16) (*Bus, error) {
	usbDevices, err := ctx.GetDeviceList()
	if err != nil {
		return nil, errors.Wrap(err, "error getting USB device list")
	}
	bus := &Bus{VendorID: vendorID, ProductID: productID, serialOf: readSerial}
	for _, usbDevice := range usbDevices {
		desc, err := usbDevice.GetDeviceDescriptor()
		if err != nil {
			log.Debugf("Skipping device: %s", err)
			continue
		}
		if desc.VendorID == vendorID && desc.ProductID == productID {
			bus.devices = append(bus.devices, usbDevice)
		}
	}
	log.Debugf("Found %d devices with ID %04x:%04x", len(bus.devices), vendorID, productID)
	return bus, nil
}

// NumberOfDevices returns the number of devices found.
func (b *Bus) NumberOfDevices() int {
	return len(b.devices)
}

// Device returns device number n.
func (b *Bus) Device(n int) (*libusb.Device, error) {
	if n < 0 || n >= len(b.devices) {
		return nil, errors.Wrapf(ErrNoDevice, "device number %d, %d devices found", n, len(b.devices))
	}
	return b.devices[n], nil
}

// IndexBySN returns the number of the device whose serial number string
// descriptor equals sn. Devices that cannot be opened are skipped.
func (b *Bus) IndexBySN(sn string) (int, error) {
	serialOf := b.serialOf
	if serialOf == nil {
		serialOf = readSerial
	}
	for i, dev := range b.devices {
		serial, err := serialOf(dev)
		if err != nil {
			log.Debugf("Skipping device %d: %s", i, err)
			continue
		}
		if serial == sn {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrNoDevice, "couldn't find device s/n %s with ID %04x:%04x",
		sn, b.VendorID, b.ProductID)
}

func readSerial(dev *libusb.Device) (string, error) {
	desc, err := dev.GetDeviceDescriptor()
	if err != nil {
		return "", errors.Wrap(err, "error getting device descriptor")
	}
	dh, err := dev.Open()
	if err != nil {
		return "", errors.Wrap(err, "error getting device handle")
	}
	defer dh.Close()
	serial, err := dh.GetStringDescriptorASCII(desc.SerialNumberIndex)
	if err != nil {
		return "", errors.Wrap(err, "error reading S/N")
	}
	return serial, nil
}

// Close drops the device list.
func (b *Bus) Close() {
	b.devices = nil
}

// busEntry is one line of the bus listing.
type busEntry struct {
	index     int
	bus       int
	address   int
	vendorID  uint16
	productID uint16
	serial    string
	product   string
	err       error
}

// usbLocation is where a device sits on the USB.
type usbLocation interface {
	GetBusNumber() (int, error)
	GetDeviceAddress() (int, error)
}

// locate fills in bus number and address. It returns false and records the
// error if either is unavailable.
func (e *busEntry) locate(l usbLocation) bool {
	var err error
	if e.bus, err = l.GetBusNumber(); err != nil {
		e.err = errors.Wrap(err, "error getting bus number")
		return false
	}
	if e.address, err = l.GetDeviceAddress(); err != nil {
		e.err = errors.Wrap(err, "error getting device address")
		return false
	}
	return true
}

func (e busEntry) String() string {
	s := fmt.Sprintf("%d: bus=%03d dev=%03d ID=%04x:%04x (%s)",
		e.index, e.bus, e.address, e.vendorID, e.productID, usbName(e.vendorID, e.productID))
	if e.err != nil {
		return s + fmt.Sprintf("  <%s>", e.err)
	}
	return s + fmt.Sprintf("  SN=%s  productID=%s", e.serial, e.product)
}

// usbName looks the IDs up in the USB ID database.
func usbName(vendorID, productID uint16) string {
	vendor, ok := usbid.Vendors[gousb.ID(vendorID)]
	if !ok {
		return "unknown"
	}
	if product, ok := vendor.Product[gousb.ID(productID)]; ok {
		return vendor.Name + " " + product.Name
	}
	return vendor.Name
}

// probe opens a device just long enough to read its serial number and ZTEX
// descriptor.
func probe(dev *libusb.Device, desc *libusb.DeviceDescriptor) (serial string, d Descriptor, err error) {
	dh, err := dev.Open()
	if err != nil {
		return "", d, err
	}
	defer dh.Close()
	serial, err = dh.GetStringDescriptorASCII(desc.SerialNumberIndex)
	if err != nil {
		return "", d, errors.Wrap(err, "error reading S/N")
	}
	z := newDevice(&handleController{dh: dh}, defaultTimeout)
	if err := z.readDescriptor(); err != nil {
		return serial, d, err
	}
	return serial, z.Descriptor, nil
}

func (e *busEntry) describe(dev *libusb.Device) {
	desc, err := dev.GetDeviceDescriptor()
	if err != nil {
		e.err = err
		return
	}
	var d Descriptor
	e.serial, d, e.err = probe(dev, desc)
	e.product = d.ProductID.String()
}

// PrintBus writes one line per device to w.
func (b *Bus) PrintBus(w io.Writer) {
	for i, dev := range b.devices {
		e := busEntry{index: i, vendorID: b.VendorID, productID: b.ProductID}
		if e.locate(dev) {
			e.describe(dev)
		}
		fmt.Fprintln(w, e)
	}
}

// Copyright (c) 2026 The ztex developers. All rights reserved.
// Project site: https://github.com/gotmc/ztex
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package ztex1v1

import (
	"time"

	"github.com/gotmc/libusb"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// VendorID is the USB vendor ID assigned to ZTEX.
	VendorID = 0x221a
	// ProductID is the product ID shared by all ZTEX firmware kit devices.
	ProductID      = 0x0100
	defaultTimeout = 1500
	defaultSettle  = 10 * time.Millisecond
)

// controller moves vendor requests and commands over endpoint 0. timeout is
// in milliseconds.
type controller interface {
	controlIn(cmd command, value, index uint16, data []byte, timeout int) (int, error)
	controlOut(cmd command, value, index uint16, data []byte, timeout int) (int, error)
}

// Ztex1v1 models a ZTEX module running firmware that implements interface 1
// version 1.
type Ztex1v1 struct {
	// Timeout is the control transfer timeout in milliseconds.
	Timeout int
	// Settle is the pause between an LSI write and the following read in Echo.
	Settle           time.Duration
	Device           *libusb.Device
	DeviceDescriptor *libusb.DeviceDescriptor
	DeviceHandle     *libusb.DeviceHandle
	Descriptor       Descriptor
	// Config is nil if the module carries no configuration data.
	Config *ConfigData

	ctrl controller
}

// Init intializes a new libusb session/context by creating a new Context and
// returning a pointer to that Context.
func Init() (*libusb.Context, error) {
	return libusb.NewContext()
}

// NewViaSN opens the ZTEX device with the given serial number, looking only
// at devices with the default ZTEX vendor and product ID. Use ScanBus and
// Bus.IndexBySN for other IDs.
func NewViaSN(ctx *libusb.Context, sn string) (*Ztex1v1, error) {
	bus, err := ScanBus(ctx, VendorID, ProductID)
	if err != nil {
		return nil, err
	}
	defer bus.Close()
	n, err := bus.IndexBySN(sn)
	if err != nil {
		return nil, err
	}
	log.Debugf("Found S/N %s. Creating device", sn)
	dev, _ := bus.Device(n)
	return Open(dev)
}

// GetFirstDevice opens the first device with the default ZTEX vendor and
// product ID found in the USB context.
func GetFirstDevice(ctx *libusb.Context) (*Ztex1v1, error) {
	dev, dh, err := ctx.OpenDeviceWithVendorProduct(VendorID, ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "error opening the ZTEX device")
	}
	return create(dev, dh, defaultTimeout, true)
}

// Open opens the given USB device, which is usually obtained from a Bus, and
// reads its ZTEX descriptor with the default timeout.
func Open(dev *libusb.Device) (*Ztex1v1, error) {
	return OpenTimeout(dev, defaultTimeout)
}

// OpenTimeout is like Open but uses timeout milliseconds for every control
// transfer, including the descriptor reads done while opening.
func OpenTimeout(dev *libusb.Device, timeout int) (*Ztex1v1, error) {
	dh, err := dev.Open()
	if err != nil {
		return nil, errors.Wrap(err, "error getting device handle")
	}
	return create(dev, dh, timeout, true)
}

// OpenEzUSB opens an EZ-USB device without reading a ZTEX descriptor, so that
// firmware can be uploaded to a chip that runs no ZTEX firmware yet. Only
// ResetEzUSB, UploadFirmware, ResetDevice and Close are meaningful on the
// result.
func OpenEzUSB(dev *libusb.Device, timeout int) (*Ztex1v1, error) {
	dh, err := dev.Open()
	if err != nil {
		return nil, errors.Wrap(err, "error getting device handle")
	}
	return create(dev, dh, timeout, false)
}

func create(dev *libusb.Device, dh *libusb.DeviceHandle, timeout int, ztex bool) (*Ztex1v1, error) {
	if err := dh.ClaimInterface(0); err != nil {
		dh.Close()
		return nil, errors.Wrap(err, "error claiming interface 0")
	}
	deviceDescriptor, err := dev.GetDeviceDescriptor()
	if err != nil {
		dh.ReleaseInterface(0)
		dh.Close()
		return nil, errors.Wrap(err, "error getting device descriptor")
	}
	z := newDevice(&handleController{dh: dh}, timeout)
	z.Device = dev
	z.DeviceDescriptor = deviceDescriptor
	z.DeviceHandle = dh
	if !ztex {
		return z, nil
	}
	if err := z.init(); err != nil {
		z.Close()
		return nil, err
	}
	return z, nil
}

func newDevice(ctrl controller, timeout int) *Ztex1v1 {
	return &Ztex1v1{
		Timeout: timeout,
		Settle:  defaultSettle,
		ctrl:    ctrl,
	}
}

// newWithController builds and initializes a device on top of an arbitrary
// controller.
func newWithController(ctrl controller, timeout int) (*Ztex1v1, error) {
	z := newDevice(ctrl, timeout)
	if err := z.init(); err != nil {
		return nil, err
	}
	return z, nil
}

// init reads the ZTEX descriptor and, where available, the configuration
// data.
func (z *Ztex1v1) init() error {
	if err := z.readDescriptor(); err != nil {
		return err
	}
	log.Debugf("ZTEX descriptor: product %s, firmware version %d, serial %s",
		z.Descriptor.ProductID, z.Descriptor.FirmwareVersion, z.Descriptor.SerialNumber)
	if !z.Descriptor.HasCapability(CapabilityMACEEPROM) {
		return nil
	}
	cfg, err := z.readConfigData()
	if err != nil {
		return err
	}
	z.Config = cfg
	return nil
}

// Close releases the interface and closes the device handle.
func (z *Ztex1v1) Close() error {
	if z.DeviceHandle == nil {
		return nil
	}
	err := z.DeviceHandle.ReleaseInterface(0)
	z.DeviceHandle.Close()
	z.DeviceHandle = nil
	if err != nil {
		return errors.Wrap(err, "error releasing interface")
	}
	return nil
}

// ResetDevice performs a USB port reset. Among other things this
// resynchronizes the data toggles.
func (z *Ztex1v1) ResetDevice() error {
	if z.DeviceHandle == nil {
		return errors.Wrap(ErrUnsupported, "no USB handle")
	}
	if err := z.DeviceHandle.ResetDevice(); err != nil {
		return errors.Wrap(err, "error resetting USB device")
	}
	return nil
}

// SendCommandToDevice sends a vendor command with the given value, index and
// payload. It returns the number of bytes sent.
func (z *Ztex1v1) SendCommandToDevice(cmd command, value, index uint16, data []byte) (int, error) {
	if len(data) > maxEP0Transfer {
		return 0, errors.Errorf("command '%s': %d bytes exceed the %d byte EP0 buffer",
			cmd, len(data), maxEP0Transfer)
	}
	n, err := z.ctrl.controlOut(cmd, value, index, data, z.Timeout)
	if err != nil {
		return n, errors.Wrapf(err, "error sending command '%s' to device", cmd)
	}
	if n < len(data) {
		return n, errors.Wrapf(ErrShortTransfer, "command '%s': sent %d of %d bytes", cmd, n, len(data))
	}
	return n, nil
}

// ReadCommandFromDevice issues a vendor request and fills data with the
// response.
func (z *Ztex1v1) ReadCommandFromDevice(cmd command, value, index uint16, data []byte) (int, error) {
	if len(data) > maxEP0Transfer {
		return 0, errors.Errorf("request '%s': %d bytes exceed the %d byte EP0 buffer",
			cmd, len(data), maxEP0Transfer)
	}
	n, err := z.ctrl.controlIn(cmd, value, index, data, z.Timeout)
	if err != nil {
		return n, errors.Wrapf(err, "error reading command '%s' from device", cmd)
	}
	if n < len(data) {
		return n, errors.Wrapf(ErrShortTransfer, "request '%s': got %d of %d bytes", cmd, n, len(data))
	}
	return n, nil
}

type handleController struct {
	dh *libusb.DeviceHandle
}

func (h *handleController) controlIn(cmd command, value, index uint16, data []byte, timeout int) (int, error) {
	requestType := libusb.BitmapRequestType(
		libusb.DeviceToHost, libusb.Vendor, libusb.DeviceRecipient)
	return h.dh.ControlTransfer(
		requestType, byte(cmd), value, index, data, len(data), timeout)
}

func (h *handleController) controlOut(cmd command, value, index uint16, data []byte, timeout int) (int, error) {
	if data == nil {
		data = []byte{}
	}
	requestType := libusb.BitmapRequestType(
		libusb.HostToDevice, libusb.Vendor, libusb.DeviceRecipient)
	return h.dh.ControlTransfer(
		requestType, byte(cmd), value, index, data, len(data), timeout)
}

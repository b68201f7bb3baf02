package devtree

import "fmt"

// Node is one device in the externally-owned hierarchy. Implementations
// borrow the underlying device object for the duration of one query and
// must not assume exclusive access.
type Node interface {
	// Valid reports whether the node can still be safely dereferenced.
	// A false result means the hierarchy changed under the walk.
	Valid() bool

	// Parent returns the parent node, or nil at the root of the hierarchy.
	Parent() Node

	// PCI returns the node's PCI identity if the node is a PCI device.
	PCI() (PCIIdentity, bool)
}

// PCIIdentity describes a PCI device in the hierarchy.
type PCIIdentity struct {
	VendorID uint16
	DeviceID uint16

	// ClassCode is the 24-bit PCI class code:
	// base class << 16 | subclass << 8 | programming interface.
	ClassCode uint32

	// Bus, Device and Function locate the device on the PCI bus.
	Bus      uint8
	Device   uint8
	Function uint8

	// Name is the device's display name, typically its bus address
	// (e.g. "0000:03:00.0").
	Name string
}

// BDF formats the bus/device/function triple as "bus:device.function".
func (p PCIIdentity) BDF() string {
	return fmt.Sprintf("%02x:%02x.%x", p.Bus, p.Device, p.Function)
}

// ClassMatch is a PCI class code signature identifying a target transport.
// All three components must match exactly.
type ClassMatch struct {
	BaseClass uint8
	SubClass  uint8
	ProgIF    uint8
}

// NVMe matches non-volatile memory controllers with the NVM Express
// programming interface (base class 0x01 mass storage, subclass 0x08,
// prog-if 0x02).
var NVMe = ClassMatch{BaseClass: 0x01, SubClass: 0x08, ProgIF: 0x02}

// Code returns the 24-bit class code this signature matches.
func (m ClassMatch) Code() uint32 {
	return uint32(m.BaseClass)<<16 | uint32(m.SubClass)<<8 | uint32(m.ProgIF)
}

// Matches reports whether a device class code matches the signature.
func (m ClassMatch) Matches(classCode uint32) bool {
	return classCode == m.Code()
}

// String formats the signature as a 6-digit hex class code.
func (m ClassMatch) String() string {
	return fmt.Sprintf("0x%06x", m.Code())
}

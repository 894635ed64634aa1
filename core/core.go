// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core sets up Vulkan for a window: the function pointer loader,
// the instance with its surface, and the choice of physical device.
package core

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// AvailableDevices returns handles of Physical Devices
	// from the Vulkan API, enumerated at the time of the call
	AvailableDevices() ([]vk.PhysicalDevice, error)

	// DeviceInfo queries the driver for the properties of a device,
	// index is its position in enumeration order
	DeviceInfo(index int, device vk.PhysicalDevice) PhysicalDeviceInfo

	// PhysicalDevicesInfo returns a struct for each Physical Device
	// along with info about those devices
	PhysicalDevicesInfo() ([]PhysicalDeviceInfo, error)

	// SetSurface sets the window surface for rendering,
	// the pointer is the VkSurfaceKHR address handed out by the windowing library
	SetSurface(unsafe.Pointer)

	// Surface returns the window surface, if it's not set
	// it should return a valid but empty surface
	Surface() vk.Surface

	// DestroySurface destroys the window surface, if set
	DestroySurface()

	// Extensions returns enabled instance extensions
	Extensions() []string

	// Instance returns the inner handle of the underlying API
	Instance() interface{}

	// Destroy destroys internal members
	Destroy()
}

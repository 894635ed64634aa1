// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/json"

	vk "github.com/devblok/vulkan"
)

// DeviceType classifies a physical device as reported by the driver
type DeviceType int

// Device type classifications, every vk.PhysicalDeviceType maps to one of these
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

// DeviceTypeFromVulkan maps the Vulkan classification onto DeviceType.
// Values the driver reports that are not known map to DeviceTypeOther.
func DeviceTypeFromVulkan(t vk.PhysicalDeviceType) DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return DeviceTypeCPU
	default:
		return DeviceTypeOther
	}
}

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated GPU"
	case DeviceTypeDiscreteGPU:
		return "Discrete GPU"
	case DeviceTypeVirtualGPU:
		return "Virtual GPU"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "Other"
	}
}

// MarshalJSON implements json.Marshaler
func (t DeviceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	// Index is the position of the device in enumeration order
	Index         int
	ID            int
	VendorID      int
	DriverVersion int
	APIVersion    string
	Name          string
	Type          DeviceType

	// PresentSupport is true when at least one queue family can
	// present to the surface set on the instance
	PresentSupport bool

	// Invalid is set when some of the device queries failed
	Invalid    bool
	Extensions []string
	Layers     []string
	Memory     uint
}

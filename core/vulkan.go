// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Layer and extension enabled in debug mode
const (
	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
	DebugReportExtension = "VK_EXT_debug_report"
)

// DefaultVulkanApplicationInfo application info describes a Vulkan application
var DefaultVulkanApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   safeString("vkstrap"),
	PEngineName:        safeString("No Engine"),
}

// Vulkan creates Vulkan instances through a two phase Loader
type Vulkan struct {
	loader  *Loader
	appInfo *vk.ApplicationInfo
}

// NewVulkan creates an unloaded Vulkan API entry point
func NewVulkan(appInfo *vk.ApplicationInfo) *Vulkan {
	if appInfo == nil {
		appInfo = DefaultVulkanApplicationInfo
	}
	return &Vulkan{
		loader:  NewLoader(),
		appInfo: appInfo,
	}
}

// Load binds global Vulkan functions through procAddr,
// nil uses the system Vulkan library
func (v *Vulkan) Load(procAddr unsafe.Pointer) error {
	return v.loader.Init(procAddr)
}

// CreateInstance creates an instance with extensions enabled
// on top of the ones in cfg
func (v *Vulkan) CreateInstance(extensions []string, cfg InstanceConfiguration) (Instance, error) {
	cfg.Extensions = append(append([]string{}, cfg.Extensions...), extensions...)
	return NewVulkanInstance(v.loader, v.appInfo, cfg)
}

// Loader returns the loader of the entry point
func (v *Vulkan) Loader() *Loader {
	return v.loader
}

// NewVulkanInstance creates a Vulkan instance and binds the
// loader to it. The loader must already be initialized.
func NewVulkanInstance(loader *Loader, appInfo *vk.ApplicationInfo, cfg InstanceConfiguration) (*VulkanInstance, error) {
	if loader.Stage() == LoaderUnloaded {
		return nil, ErrLoaderNotInitialized
	}

	if cfg.DebugMode {
		cfg.Layers = appendMissing(cfg.Layers, ValidationLayer)
		cfg.Extensions = appendMissing(cfg.Extensions, DebugReportExtension)
	}

	if len(cfg.Layers) > 0 {
		available, err := availableInstanceLayers()
		if err != nil {
			return nil, err
		}
		if missing := missingLayers(cfg.Layers, available); len(missing) > 0 {
			return nil, fmt.Errorf("requested layers are not available: %v", missing)
		}
	}

	/* Create instance */
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := loader.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	v := &VulkanInstance{
		configuration: cfg,
		instance:      instance,
	}

	if cfg.DebugMode {
		if err := v.createDebugCallback(); err != nil {
			vk.DestroyInstance(instance, nil)
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"extensions": cfg.Extensions,
		"layers":     cfg.Layers,
	}).Debug("Vulkan instance created")
	return v, nil
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	configuration InstanceConfiguration

	surface     vk.Surface
	instance    vk.Instance
	dbgCallback vk.DebugReportCallback
}

// AvailableDevices implements interface
func (v *VulkanInstance) AvailableDevices() ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	return availableDevices[:deviceCount], nil
}

// PhysicalDevicesInfo implements interface
func (v *VulkanInstance) PhysicalDevicesInfo() ([]PhysicalDeviceInfo, error) {
	devices, err := v.AvailableDevices()
	if err != nil {
		return nil, err
	}
	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, device := range devices {
		pdi[i] = v.DeviceInfo(i, device)
	}
	return pdi, nil
}

// DeviceInfo implements interface
func (v *VulkanInstance) DeviceInfo(index int, device vk.PhysicalDevice) PhysicalDeviceInfo {
	info := PhysicalDeviceInfo{Index: index}

	// Get extension info
	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &numDeviceExtensions, nil)); err != nil {
		info.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &numDeviceExtensions, deviceExt)); err != nil {
		info.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	// Get layers info
	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(device, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(device, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	// Get memory info
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device, &memoryProperties)
	memoryProperties.Deref()
	for iMem := (uint32)(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory = info.Memory + uint(memoryProperties.MemoryHeaps[iMem].Size)
	}

	// Get general device info
	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &physicalDeviceProperties)
	physicalDeviceProperties.Deref()
	info.ID = (int)(physicalDeviceProperties.DeviceID)
	info.VendorID = (int)(physicalDeviceProperties.VendorID)
	info.Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
	info.DriverVersion = (int)(physicalDeviceProperties.DriverVersion)
	info.APIVersion = versionString(physicalDeviceProperties.ApiVersion)
	info.Type = DeviceTypeFromVulkan(physicalDeviceProperties.DeviceType)

	info.PresentSupport = v.presentSupport(device)
	return info
}

// presentSupport reports whether any queue family of device can
// present to the surface. Without a surface nothing can be presented.
func (v *VulkanInstance) presentSupport(device vk.PhysicalDevice) bool {
	if v.surface == nil {
		return false
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	for i := uint32(0); i < queueFamilyCount; i++ {
		var supported vk.Bool32
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(device, i, v.surface, &supported)); err != nil {
			log.WithError(err).Warn("vk.GetPhysicalDeviceSurfaceSupport() failed")
			continue
		}
		if supported.B() {
			return true
		}
	}
	return false
}

// SetSurface implements interface
func (v *VulkanInstance) SetSurface(pSurface unsafe.Pointer) {
	if pSurface == nil {
		v.surface = nil
		return
	}
	v.surface = vk.SurfaceFromPointer(uintptr(pSurface))
}

// Surface implements interface
func (v *VulkanInstance) Surface() vk.Surface {
	if v.surface == nil {
		return vk.NullSurface
	}
	return v.surface
}

// DestroySurface implements interface
func (v *VulkanInstance) DestroySurface() {
	if v.surface == nil {
		return
	}
	vk.DestroySurface(v.instance, v.surface, nil)
	v.surface = nil
}

// Instance returns internal vk.Instance
func (v *VulkanInstance) Instance() interface{} {
	return v.instance
}

// Extensions implements interface
func (v *VulkanInstance) Extensions() []string {
	return v.configuration.Extensions
}

// Destroy implements interface
func (v *VulkanInstance) Destroy() {
	if v.dbgCallback != nil {
		vk.DestroyDebugReportCallback(v.instance, v.dbgCallback, nil)
		v.dbgCallback = nil
	}
	vk.DestroyInstance(v.instance, nil)
}

func availableInstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, errors.New("vk.EnumerateInstanceLayerProperties(): " + err.Error())
	}

	names := make([]string, 0, count)
	for _, layer := range layers[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

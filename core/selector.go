// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"io"
	"strings"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Selection errors
var (
	ErrNoPhysicalDevices = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableDevice  = errors.New("no physical device can present to the surface")
)

// SelectionPolicy decides which device is chosen when no discrete GPU exists
type SelectionPolicy int

// Selection policies
const (
	// PolicyDiscreteFirst picks the first discrete GPU,
	// otherwise the first enumerated device.
	PolicyDiscreteFirst SelectionPolicy = iota

	// PolicyLastFallback picks the first discrete GPU, otherwise the last
	// non-discrete device scanned. Kept to reproduce the selection of
	// older builds.
	PolicyLastFallback
)

var policyNames = map[SelectionPolicy]string{
	PolicyDiscreteFirst: "discrete-first",
	PolicyLastFallback:  "last-fallback",
}

func (p SelectionPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("SelectionPolicy(%d)", int(p))
}

// ParseSelectionPolicy returns the policy with the given name
func ParseSelectionPolicy(name string) (SelectionPolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown selection policy %q", name)
}

// SelectPhysicalDevice returns the index into devices of the device to use.
// The index is valid whenever the error is nil.
func SelectPhysicalDevice(devices []PhysicalDeviceInfo, cfg SelectionConfiguration) (int, error) {
	if len(devices) == 0 {
		return -1, ErrNoPhysicalDevices
	}

	selected, fallback := scanDevices(devices, cfg)
	if selected < 0 {
		selected = fallback
	}
	if selected < 0 {
		return -1, ErrNoSuitableDevice
	}
	return selected, nil
}

// scanDevices returns the index of the first discrete GPU and the fallback
// the policy has settled on by the time the scan stopped, -1 when unset.
func scanDevices(devices []PhysicalDeviceInfo, cfg SelectionConfiguration) (discrete, fallback int) {
	discrete, fallback = -1, -1
	for i, d := range devices {
		if cfg.RequirePresent && !d.PresentSupport {
			continue
		}
		if d.Type == DeviceTypeDiscreteGPU {
			discrete = i
			return
		}
		switch cfg.Policy {
		case PolicyLastFallback:
			fallback = i
		default:
			if fallback < 0 {
				fallback = i
			}
		}
	}
	return
}

// PickPhysicalDevice enumerates the devices of the instance, writes
// a line for each of them to w and selects one of them.
func PickPhysicalDevice(instance Instance, w io.Writer, cfg SelectionConfiguration) (vk.PhysicalDevice, PhysicalDeviceInfo, error) {
	devices, err := instance.AvailableDevices()
	if err != nil {
		return nil, PhysicalDeviceInfo{}, err
	}
	if len(devices) == 0 {
		return nil, PhysicalDeviceInfo{}, ErrNoPhysicalDevices
	}

	fmt.Fprintf(w, "Found %d physical device(s)\n", len(devices))
	infos := make([]PhysicalDeviceInfo, len(devices))
	for i, device := range devices {
		info := instance.DeviceInfo(i, device)
		fmt.Fprintf(w, "Device: %s (%s)\n", info.Name, info.Type)
		log.WithFields(log.Fields{
			"index":   info.Index,
			"name":    info.Name,
			"type":    info.Type.String(),
			"present": info.PresentSupport,
		}).Debug("Physical device enumerated")
		infos[i] = info
	}

	idx, err := SelectPhysicalDevice(infos, cfg)
	if err != nil {
		return nil, PhysicalDeviceInfo{}, err
	}
	return devices[idx], infos[idx], nil
}

// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window wraps the windowing libraries that can host a Vulkan surface.
package window

import (
	"fmt"
	"unsafe"

	"github.com/devblok/vkstrap/core"
)

// Platform is a windowing library. Init must succeed before anything
// else is called and Terminate is called last.
type Platform interface {
	// Init initializes the library
	Init() error

	// VulkanSupported checks that a Vulkan loader is usable by the library
	VulkanSupported() bool

	// ProcAddr returns the vkGetInstanceProcAddr the library resolved
	ProcAddr() unsafe.Pointer

	// CreateWindow opens a window without a client API attached
	CreateWindow(cfg core.WindowConfiguration) (Window, error)

	// Terminate releases the library
	Terminate()
}

// Window is an OS window that can be presented to through a Vulkan surface
type Window interface {
	// InstanceExtensions returns the instance extensions needed
	// to create a surface for this window
	InstanceExtensions() []string

	// CreateSurface creates a VkSurfaceKHR for the window on instance,
	// the returned pointer is the address of the handle
	CreateSurface(instance interface{}) (unsafe.Pointer, error)

	// PollEvents processes pending events and reports whether
	// closing the window was requested
	PollEvents() bool

	// Destroy closes the window
	Destroy()
}

// New returns the platform for the named backend
func New(backend string) (Platform, error) {
	switch backend {
	case core.BackendSDL:
		return NewSDL(), nil
	case core.BackendGLFW:
		return NewGLFW(), nil
	default:
		return nil, fmt.Errorf("unknown window backend %q", backend)
	}
}

// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/devblok/vkstrap/core"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// GLFW is the GLFW 3.3 platform
type GLFW struct{}

// NewGLFW creates an uninitialized GLFW platform
func NewGLFW() *GLFW {
	return &GLFW{}
}

// Init implements interface
func (g *GLFW) Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw.Init()")
	}
	return nil
}

// VulkanSupported implements interface
func (g *GLFW) VulkanSupported() bool {
	return glfw.VulkanSupported()
}

// ProcAddr implements interface
func (g *GLFW) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// CreateWindow implements interface
func (g *GLFW) CreateWindow(cfg core.WindowConfiguration) (Window, error) {
	// Tell GLFW we aren't using OpenGL.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return &glfwWindow{window: window}, nil
}

// Terminate implements interface
func (g *GLFW) Terminate() {
	glfw.Terminate()
}

type glfwWindow struct {
	window *glfw.Window
}

func (w *glfwWindow) InstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *glfwWindow) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	surface, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return nil, errors.Wrap(err, "glfw.Window.CreateWindowSurface()")
	}
	// GLFW hands out the address of the handle as uintptr
	return unsafe.Pointer(surface), nil
}

func (w *glfwWindow) PollEvents() bool {
	glfw.PollEvents()
	return w.window.ShouldClose()
}

func (w *glfwWindow) Destroy() {
	w.window.Destroy()
}

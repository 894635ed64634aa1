// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/devblok/vkstrap/core"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL is the SDL2 platform
type SDL struct {
	libraryLoaded bool
}

// NewSDL creates an uninitialized SDL2 platform
func NewSDL() *SDL {
	return &SDL{}
}

// Init implements interface
func (s *SDL) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	return nil
}

// VulkanSupported implements interface, SDL supports Vulkan
// when it is able to load the Vulkan library
func (s *SDL) VulkanSupported() bool {
	if s.libraryLoaded {
		return true
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		log.WithError(err).Debug("sdl.VulkanLoadLibrary() failed")
		return false
	}
	s.libraryLoaded = true
	return true
}

// ProcAddr implements interface
func (s *SDL) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// CreateWindow implements interface
func (s *SDL) CreateWindow(cfg core.WindowConfiguration) (Window, error) {
	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &sdlWindow{window: window}, nil
}

// Terminate implements interface
func (s *SDL) Terminate() {
	if s.libraryLoaded {
		sdl.VulkanUnloadLibrary()
		s.libraryLoaded = false
	}
	sdl.Quit()
}

type sdlWindow struct {
	window *sdl.Window
	closed bool
}

func (w *sdlWindow) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *sdlWindow) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.Window.VulkanCreateSurface()")
	}
	return surface, nil
}

func (w *sdlWindow) PollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.QuitEvent:
			w.closed = true
		case *sdl.WindowEvent:
			if et.Event == sdl.WINDOWEVENT_CLOSE {
				w.closed = true
			}
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				w.closed = true
			}
		}
	}
	return w.closed
}

func (w *sdlWindow) Destroy() {
	if err := w.window.Destroy(); err != nil {
		log.WithError(err).Warn("sdl.Window.Destroy() failed")
	}
}

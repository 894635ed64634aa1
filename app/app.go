// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app runs the bootstrap sequence: window, Vulkan instance,
// surface, physical device, then window events until close.
package app

import (
	"context"
	"fmt"
	"io"
	"unsafe"

	"github.com/devblok/vkstrap/core"
	"github.com/devblok/vkstrap/window"
	log "github.com/sirupsen/logrus"
)

// Graphics creates the Vulkan side of the program
type Graphics interface {
	// Load binds the global Vulkan functions through procAddr
	Load(procAddr unsafe.Pointer) error

	// CreateInstance creates an instance with the extensions enabled
	// and binds the loaded functions to it
	CreateInstance(extensions []string, cfg core.InstanceConfiguration) (core.Instance, error)
}

// Stage identifies the step of the bootstrap that failed
type Stage int

// Stages of the bootstrap that can fail with an InitError
const (
	StagePlatform Stage = iota
	StageVulkanSupport
	StageLoader
	StageWindow
	StageInstance
	StageSurface
)

func (s Stage) String() string {
	switch s {
	case StagePlatform:
		return "Failed to initialize windowing library"
	case StageVulkanSupport:
		return "Vulkan not supported"
	case StageLoader:
		return "Failed to initialize Vulkan loader"
	case StageWindow:
		return "Failed to create window"
	case StageInstance:
		return "Failed to create Vulkan instance"
	case StageSurface:
		return "Failed to create window surface"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// InitError is an initialization failure that is reported to the user
type InitError struct {
	Stage Stage
	Err   error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.Stage.String()
	}
	return e.Stage.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *InitError) Unwrap() error {
	return e.Err
}

// Run sets up the platform window and Vulkan, picks a physical device and
// polls window events until the window is asked to close or ctx is done.
// Everything acquired is released before Run returns, in reverse order.
func Run(ctx context.Context, platform window.Platform, graphics Graphics, cfg core.Configuration, out io.Writer) error {
	if err := platform.Init(); err != nil {
		return &InitError{Stage: StagePlatform, Err: err}
	}
	defer platform.Terminate()

	if !platform.VulkanSupported() {
		return &InitError{Stage: StageVulkanSupport}
	}
	fmt.Fprintln(out, "Vulkan is supported!")

	if err := graphics.Load(platform.ProcAddr()); err != nil {
		return &InitError{Stage: StageLoader, Err: err}
	}

	win, err := platform.CreateWindow(cfg.Window)
	if err != nil {
		return &InitError{Stage: StageWindow, Err: err}
	}
	defer win.Destroy()

	instance, err := graphics.CreateInstance(win.InstanceExtensions(), cfg.Instance)
	if err != nil {
		return &InitError{Stage: StageInstance, Err: err}
	}
	defer instance.Destroy()

	surface, err := win.CreateSurface(instance.Instance())
	if err != nil {
		return &InitError{Stage: StageSurface, Err: err}
	}
	instance.SetSurface(surface)
	defer instance.DestroySurface()

	_, info, err := core.PickPhysicalDevice(instance, out, cfg.Selection)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Selected device: %s (%s)\n", info.Name, info.Type)
	log.WithFields(log.Fields{
		"index":  info.Index,
		"name":   info.Name,
		"type":   info.Type.String(),
		"policy": cfg.Selection.Policy.String(),
	}).Info("Physical device selected")

	return pollEvents(ctx, win, cfg.Time)
}

// pollEvents polls win on every tick until it reports a close request
// or ctx is done.
func pollEvents(ctx context.Context, win window.Window, cfg core.TimeConfiguration) error {
	timeService := core.NewTime(cfg)
	defer timeService.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Event loop cancelled")
			return nil
		case <-timeService.EventTicker().C:
			if win.PollEvents() {
				log.Info("Event loop exited")
				return nil
			}
		}
	}
}

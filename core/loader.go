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

// Loader errors
var (
	ErrLoaderNotInitialized = errors.New("vulkan loader is not initialized")
	ErrLoaderStage          = errors.New("vulkan loader is already initialized")
)

// LoaderStage is the binding state of the Vulkan function pointers
type LoaderStage int

// Loader stages, in the order a Loader goes through them
const (
	LoaderUnloaded LoaderStage = iota
	LoaderGlobal
	LoaderInstance
)

func (s LoaderStage) String() string {
	switch s {
	case LoaderUnloaded:
		return "unloaded"
	case LoaderGlobal:
		return "global"
	case LoaderInstance:
		return "instance"
	default:
		return fmt.Sprintf("LoaderStage(%d)", int(s))
	}
}

// loaderFuncs are the process wide binding calls of the vulkan package
type loaderFuncs struct {
	setProcAddr        func(unsafe.Pointer)
	setDefaultProcAddr func() error
	init               func() error
	initInstance       func(vk.Instance) error
}

var vulkanLoaderFuncs = loaderFuncs{
	setProcAddr:        vk.SetGetInstanceProcAddr,
	setDefaultProcAddr: vk.SetDefaultGetInstanceProcAddr,
	init:               vk.Init,
	initInstance:       vk.InitInstance,
}

// Loader binds Vulkan function pointers in two phases: global functions
// before an instance exists, instance functions once it does.
type Loader struct {
	funcs    loaderFuncs
	stage    LoaderStage
	instance vk.Instance
}

// NewLoader creates a loader that has not bound anything yet
func NewLoader() *Loader {
	return &Loader{funcs: vulkanLoaderFuncs}
}

// Init binds the global functions through procAddr, which is the
// vkGetInstanceProcAddr of the windowing library. When procAddr is nil
// the system Vulkan library is used.
func (l *Loader) Init(procAddr unsafe.Pointer) error {
	if l.stage != LoaderUnloaded {
		return ErrLoaderStage
	}

	if procAddr == nil {
		if err := l.funcs.setDefaultProcAddr(); err != nil {
			return errors.New("vk.SetDefaultGetInstanceProcAddr(): " + err.Error())
		}
	} else {
		l.funcs.setProcAddr(procAddr)
	}

	if err := l.funcs.init(); err != nil {
		return errors.New("vk.Init(): " + err.Error())
	}

	l.stage = LoaderGlobal
	log.WithField("default", procAddr == nil).Debug("Vulkan loader initialized")
	return nil
}

// InitInstance binds the instance level functions of instance
func (l *Loader) InitInstance(instance vk.Instance) error {
	if l.stage == LoaderUnloaded {
		return ErrLoaderNotInitialized
	}

	if err := l.funcs.initInstance(instance); err != nil {
		return errors.New("vk.InitInstance(): " + err.Error())
	}

	l.instance = instance
	l.stage = LoaderInstance
	log.Debug("Vulkan loader bound to instance")
	return nil
}

// Stage returns the current binding state
func (l *Loader) Stage() LoaderStage {
	return l.stage
}

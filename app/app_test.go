// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unsafe"

	vk "github.com/devblok/vulkan"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/vkstrap/app"
	"github.com/devblok/vkstrap/core"
	"github.com/devblok/vkstrap/window"
)

// recorder collects the calls made on every fake, in order
type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

// failures selects the calls that fail
type failures struct {
	init, supported, load, window, instance, surface bool
}

type fakePlatform struct {
	*recorder
	fail failures

	// closeAfter is the number of polls before the window asks to close,
	// zero never closes
	closeAfter int
	win        *fakeWindow
}

func (p *fakePlatform) Init() error {
	p.record("platform.Init")
	if p.fail.init {
		return errors.New("no display")
	}
	return nil
}

func (p *fakePlatform) VulkanSupported() bool {
	p.record("platform.VulkanSupported")
	return !p.fail.supported
}

func (p *fakePlatform) ProcAddr() unsafe.Pointer {
	p.record("platform.ProcAddr")
	return nil
}

func (p *fakePlatform) CreateWindow(cfg core.WindowConfiguration) (window.Window, error) {
	p.record("platform.CreateWindow")
	if p.fail.window {
		return nil, errors.New("window refused")
	}
	p.win = &fakeWindow{recorder: p.recorder, fail: p.fail, closeAfter: p.closeAfter}
	return p.win, nil
}

func (p *fakePlatform) Terminate() {
	p.record("platform.Terminate")
}

type fakeWindow struct {
	*recorder
	fail       failures
	closeAfter int
	polls      int
	surface    uint64
}

func (w *fakeWindow) InstanceExtensions() []string {
	w.record("window.InstanceExtensions")
	return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
}

func (w *fakeWindow) CreateSurface(instance interface{}) (unsafe.Pointer, error) {
	w.record("window.CreateSurface")
	if w.fail.surface {
		return nil, errors.New("surface refused")
	}
	return unsafe.Pointer(&w.surface), nil
}

func (w *fakeWindow) PollEvents() bool {
	w.polls++
	closed := w.closeAfter > 0 && w.polls >= w.closeAfter
	if closed {
		w.record("window.PollEvents(close)")
	}
	return closed
}

func (w *fakeWindow) Destroy() {
	w.record("window.Destroy")
}

type fakeGraphics struct {
	*recorder
	fail       failures
	devices    []core.PhysicalDeviceInfo
	extensions []string
	instance   *fakeInstance
}

func (g *fakeGraphics) Load(procAddr unsafe.Pointer) error {
	g.record("graphics.Load")
	if g.fail.load {
		return errors.New("vulkan library not found")
	}
	return nil
}

func (g *fakeGraphics) CreateInstance(extensions []string, cfg core.InstanceConfiguration) (core.Instance, error) {
	g.record("graphics.CreateInstance")
	g.extensions = extensions
	if g.fail.instance {
		return nil, errors.New("VK_ERROR_INCOMPATIBLE_DRIVER")
	}
	g.instance = &fakeInstance{recorder: g.recorder, devices: g.devices}
	return g.instance, nil
}

type fakeInstance struct {
	*recorder
	devices []core.PhysicalDeviceInfo
	handles []byte
	surface unsafe.Pointer
}

func (i *fakeInstance) AvailableDevices() ([]vk.PhysicalDevice, error) {
	i.record("instance.AvailableDevices")
	i.handles = make([]byte, len(i.devices)+1)
	devs := make([]vk.PhysicalDevice, len(i.devices))
	for n := range devs {
		devs[n] = vk.PhysicalDevice(unsafe.Pointer(&i.handles[n]))
	}
	return devs, nil
}

func (i *fakeInstance) DeviceInfo(index int, device vk.PhysicalDevice) core.PhysicalDeviceInfo {
	i.record("instance.DeviceInfo")
	return i.devices[index]
}

func (i *fakeInstance) PhysicalDevicesInfo() ([]core.PhysicalDeviceInfo, error) {
	i.record("instance.PhysicalDevicesInfo")
	return i.devices, nil
}

func (i *fakeInstance) SetSurface(surface unsafe.Pointer) {
	i.record("instance.SetSurface")
	i.surface = surface
}

func (i *fakeInstance) Surface() vk.Surface {
	return vk.NullSurface
}

func (i *fakeInstance) DestroySurface() {
	i.record("instance.DestroySurface")
}

func (i *fakeInstance) Extensions() []string {
	return nil
}

func (i *fakeInstance) Instance() interface{} {
	return i
}

func (i *fakeInstance) Destroy() {
	i.record("instance.Destroy")
}

func newFakes(fail failures, closeAfter int, devices ...core.PhysicalDeviceInfo) (*recorder, *fakePlatform, *fakeGraphics) {
	rec := &recorder{}
	return rec,
		&fakePlatform{recorder: rec, fail: fail, closeAfter: closeAfter},
		&fakeGraphics{recorder: rec, fail: fail, devices: devices}
}

func testConfiguration() core.Configuration {
	cfg := core.DefaultConfiguration()
	cfg.Time.EventPollDelay = 1
	return cfg
}

var (
	integrated = core.PhysicalDeviceInfo{Index: 0, Name: "Intel UHD 630", Type: core.DeviceTypeIntegratedGPU}
	discrete   = core.PhysicalDeviceInfo{Index: 1, Name: "Radeon RX 580", Type: core.DeviceTypeDiscreteGPU}
)

var setupCalls = []string{
	"platform.Init",
	"platform.VulkanSupported",
	"platform.ProcAddr",
	"graphics.Load",
	"platform.CreateWindow",
	"window.InstanceExtensions",
	"graphics.CreateInstance",
	"window.CreateSurface",
	"instance.SetSurface",
	"instance.AvailableDevices",
	"instance.DeviceInfo",
	"instance.DeviceInfo",
}

var teardownCalls = []string{
	"instance.DestroySurface",
	"instance.Destroy",
	"window.Destroy",
	"platform.Terminate",
}

func TestRunUntilClose(t *testing.T) {
	c := qt.New(t)
	rec, platform, graphics := newFakes(failures{}, 3, integrated, discrete)

	var out bytes.Buffer
	err := app.Run(context.Background(), platform, graphics, testConfiguration(), &out)
	c.Assert(err, qt.IsNil)

	want := append(append(append([]string{}, setupCalls...), "window.PollEvents(close)"), teardownCalls...)
	c.Assert(rec.calls, qt.DeepEquals, want)
	c.Assert(platform.win.polls, qt.Equals, 3)
	c.Assert(graphics.extensions, qt.DeepEquals, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"})
	c.Assert(graphics.instance.surface, qt.Equals, unsafe.Pointer(&platform.win.surface))

	c.Assert(out.String(), qt.Equals, "Vulkan is supported!\n"+
		"Found 2 physical device(s)\n"+
		"Device: Intel UHD 630 (Integrated GPU)\n"+
		"Device: Radeon RX 580 (Discrete GPU)\n"+
		"Selected device: Radeon RX 580 (Discrete GPU)\n")
}

func TestRunCancelled(t *testing.T) {
	c := qt.New(t)
	rec, platform, graphics := newFakes(failures{}, 0, integrated)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, platform, graphics, testConfiguration(), &bytes.Buffer{})
	c.Assert(err, qt.IsNil)
	c.Assert(rec.calls[len(rec.calls)-len(teardownCalls):], qt.DeepEquals, teardownCalls)
}

func TestRunInitFailures(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		about string
		fail  failures
		stage app.Stage
		calls []string
	}{{
		about: "windowing library",
		fail:  failures{init: true},
		stage: app.StagePlatform,
		calls: []string{"platform.Init"},
	}, {
		about: "vulkan support",
		fail:  failures{supported: true},
		stage: app.StageVulkanSupport,
		calls: []string{"platform.Init", "platform.VulkanSupported", "platform.Terminate"},
	}, {
		about: "loader",
		fail:  failures{load: true},
		stage: app.StageLoader,
		calls: []string{"platform.Init", "platform.VulkanSupported", "platform.ProcAddr", "graphics.Load", "platform.Terminate"},
	}, {
		about: "window",
		fail:  failures{window: true},
		stage: app.StageWindow,
		calls: []string{"platform.Init", "platform.VulkanSupported", "platform.ProcAddr", "graphics.Load",
			"platform.CreateWindow", "platform.Terminate"},
	}, {
		about: "instance",
		fail:  failures{instance: true},
		stage: app.StageInstance,
		calls: []string{"platform.Init", "platform.VulkanSupported", "platform.ProcAddr", "graphics.Load",
			"platform.CreateWindow", "window.InstanceExtensions", "graphics.CreateInstance",
			"window.Destroy", "platform.Terminate"},
	}, {
		about: "surface",
		fail:  failures{surface: true},
		stage: app.StageSurface,
		calls: []string{"platform.Init", "platform.VulkanSupported", "platform.ProcAddr", "graphics.Load",
			"platform.CreateWindow", "window.InstanceExtensions", "graphics.CreateInstance", "window.CreateSurface",
			"instance.Destroy", "window.Destroy", "platform.Terminate"},
	}}

	for _, test := range tests {
		c.Run(test.about, func(c *qt.C) {
			rec, platform, graphics := newFakes(test.fail, 1, discrete)

			var out bytes.Buffer
			err := app.Run(context.Background(), platform, graphics, testConfiguration(), &out)

			var initErr *app.InitError
			c.Assert(errors.As(err, &initErr), qt.Equals, true)
			c.Assert(initErr.Stage, qt.Equals, test.stage)
			c.Assert(rec.calls, qt.DeepEquals, test.calls)
			c.Assert(strings.Contains(out.String(), "Found"), qt.Equals, false)
		})
	}
}

func TestRunNoPhysicalDevices(t *testing.T) {
	c := qt.New(t)
	rec, platform, graphics := newFakes(failures{}, 1)

	var out bytes.Buffer
	err := app.Run(context.Background(), platform, graphics, testConfiguration(), &out)
	c.Assert(err, qt.Equals, core.ErrNoPhysicalDevices)

	var initErr *app.InitError
	c.Assert(errors.As(err, &initErr), qt.Equals, false)

	want := append(append([]string{}, setupCalls[:10]...), teardownCalls...)
	c.Assert(rec.calls, qt.DeepEquals, want)
	c.Assert(out.String(), qt.Equals, "Vulkan is supported!\n")
}

func TestInitErrorMessage(t *testing.T) {
	c := qt.New(t)
	err := &app.InitError{Stage: app.StageInstance, Err: errors.New("VK_ERROR_INCOMPATIBLE_DRIVER")}
	c.Assert(err.Error(), qt.Equals, "Failed to create Vulkan instance: VK_ERROR_INCOMPATIBLE_DRIVER")
	c.Assert(errors.Unwrap(err), qt.Equals, err.Err)

	c.Assert((&app.InitError{Stage: app.StageVulkanSupport}).Error(), qt.Equals, "Vulkan not supported")
	c.Assert(app.StagePlatform.String(), qt.Equals, "Failed to initialize windowing library")
	c.Assert(app.StageSurface.String(), qt.Equals, "Failed to create window surface")
}

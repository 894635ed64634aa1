// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/devblok/vkstrap/app"
	"github.com/devblok/vkstrap/core"
	"github.com/devblok/vkstrap/window"
	log "github.com/sirupsen/logrus"
)

// exitFailure is returned to the OS when initialization fails
const exitFailure = -1

func init() {
	runtime.LockOSThread()
}

var (
	envFile        = flag.String("env", "", "Load environment overrides from a dotenv file")
	backend        = flag.String("backend", "", "Windowing backend: sdl or glfw")
	debug          = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	policy         = flag.String("policy", "", "Device selection policy: discrete-first or last-fallback")
	requirePresent = flag.Bool("require-present", false, "Only select devices that can present to the window")
	logLevel       = flag.String("loglevel", "", "Log level")
	width          = flag.Uint("width", 0, "Window width")
	height         = flag.Uint("height", 0, "Window height")
)

func configure() (core.Configuration, error) {
	cfg := core.DefaultConfiguration()

	if *envFile != "" {
		if err := core.LoadEnvFile(*envFile); err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadEnvironment(); err != nil {
		return cfg, err
	}

	if *backend != "" {
		cfg.Window.Backend = core.NormalizeBackend(*backend)
	}
	if *width > core.MaxWindowSize || *height > core.MaxWindowSize {
		return cfg, fmt.Errorf("invalid window size %dx%d", *width, *height)
	}
	if *width != 0 {
		cfg.Window.Width = uint32(*width)
	}
	if *height != 0 {
		cfg.Window.Height = uint32(*height)
	}
	if *debug {
		cfg.Instance.DebugMode = true
	}
	if *requirePresent {
		cfg.Selection.RequirePresent = true
	}
	if *policy != "" {
		p, err := core.ParseSelectionPolicy(*policy)
		if err != nil {
			return cfg, err
		}
		cfg.Selection.Policy = p
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, err := configure()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	log.SetLevel(level)

	platform, err := window.New(cfg.Window.Backend)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx, platform, core.NewVulkan(core.DefaultVulkanApplicationInfo), cfg, os.Stdout)

	var initErr *app.InitError
	switch {
	case err == nil:
	case errors.As(err, &initErr):
		log.WithError(initErr.Err).Debug(initErr.Stage.String())
		fmt.Fprintln(os.Stderr, initErr.Stage.String())
		cancel()
		os.Exit(exitFailure)
	default:
		panic(err)
	}
}

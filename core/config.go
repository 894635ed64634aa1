// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Backend names accepted by WindowConfiguration.Backend
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Environment variables that override the configuration
const (
	EnvBackend        = "VKSTRAP_BACKEND"
	EnvWidth          = "VKSTRAP_WIDTH"
	EnvHeight         = "VKSTRAP_HEIGHT"
	EnvTitle          = "VKSTRAP_TITLE"
	EnvDebug          = "VKSTRAP_DEBUG"
	EnvPolicy         = "VKSTRAP_POLICY"
	EnvRequirePresent = "VKSTRAP_REQUIRE_PRESENT"
	EnvLogLevel       = "VKSTRAP_LOG_LEVEL"
	EnvPollDelay      = "VKSTRAP_POLL_DELAY"
)

// Configuration defines a global program configuration
type Configuration struct {
	Window    WindowConfiguration
	Instance  InstanceConfiguration
	Selection SelectionConfiguration
	Time      TimeConfiguration
	Log       LogConfiguration
}

// MaxWindowSize is the largest width or height a window can be created with
const MaxWindowSize = math.MaxInt32

// NormalizeBackend returns the backend name in the form Validate accepts
func NormalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// WindowConfiguration is used to configure the window and its backend
type WindowConfiguration struct {
	// Backend is the windowing library, BackendSDL or BackendGLFW
	Backend string
	Title   string

	Width  uint32
	Height uint32
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	// DebugMode enables validation layers and the debug report callback
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// SelectionConfiguration is used to configure physical device selection
type SelectionConfiguration struct {
	Policy SelectionPolicy

	// RequirePresent skips devices that can't present to the window surface
	RequirePresent bool
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// EventPollDelay is the delay between window event polls, in milliseconds.
	// Zero polls as fast as possible.
	EventPollDelay int
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level string
}

// DefaultConfiguration returns the configuration used when nothing is overridden
func DefaultConfiguration() Configuration {
	return Configuration{
		Window: WindowConfiguration{
			Backend: BackendSDL,
			Title:   "vkstrap",
			Width:   800,
			Height:  600,
		},
		Instance: InstanceConfiguration{
			Extensions: []string{},
			Layers:     []string{},
		},
		Selection: SelectionConfiguration{
			Policy: PolicyDiscreteFirst,
		},
		Time: TimeConfiguration{
			EventPollDelay: 16,
		},
		Log: LogConfiguration{
			Level: log.InfoLevel.String(),
		},
	}
}

// LoadEnvFile loads variables from a dotenv file, overriding the ones
// already present in the environment.
func LoadEnvFile(path string) error {
	if err := godotenv.Overload(path); err != nil {
		return errors.Wrapf(err, "load env file %s", path)
	}
	envy.Reload()
	return nil
}

// LoadEnvironment applies overrides from the environment. Variables that
// are not set leave the corresponding field untouched.
func (c *Configuration) LoadEnvironment() error {
	c.Window.Backend = NormalizeBackend(envy.Get(EnvBackend, c.Window.Backend))
	c.Window.Title = envy.Get(EnvTitle, c.Window.Title)
	c.Log.Level = envy.Get(EnvLogLevel, c.Log.Level)

	if err := envUint32(EnvWidth, &c.Window.Width); err != nil {
		return err
	}
	if err := envUint32(EnvHeight, &c.Window.Height); err != nil {
		return err
	}
	if err := envBool(EnvDebug, &c.Instance.DebugMode); err != nil {
		return err
	}
	if err := envBool(EnvRequirePresent, &c.Selection.RequirePresent); err != nil {
		return err
	}

	if v := envy.Get(EnvPollDelay, ""); v != "" {
		delay, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvPollDelay)
		}
		c.Time.EventPollDelay = delay
	}

	if v := envy.Get(EnvPolicy, ""); v != "" {
		policy, err := ParseSelectionPolicy(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvPolicy)
		}
		c.Selection.Policy = policy
	}
	return nil
}

// Validate checks the configuration for values the program can't run with
func (c Configuration) Validate() error {
	switch c.Window.Backend {
	case BackendSDL, BackendGLFW:
	default:
		return fmt.Errorf("unknown window backend %q", c.Window.Backend)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 ||
		c.Window.Width > MaxWindowSize || c.Window.Height > MaxWindowSize {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, ok := policyNames[c.Selection.Policy]; !ok {
		return fmt.Errorf("unknown selection policy %d", c.Selection.Policy)
	}
	if c.Time.EventPollDelay < 0 {
		return fmt.Errorf("negative event poll delay %d", c.Time.EventPollDelay)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func envUint32(key string, dst *uint32) error {
	v := envy.Get(key, "")
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	*dst = uint32(n)
	return nil
}

func envBool(key string, dst *bool) error {
	v := envy.Get(key, "")
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	*dst = b
	return nil
}

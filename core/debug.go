// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func (v *VulkanInstance) createDebugCallback() error {
	dbgCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportCallback,
	}

	var dbg vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(v.instance, &dbgCreateInfo, nil, &dbg)); err != nil {
		return errors.Wrap(err, "vk.CreateDebugReportCallback()")
	}
	v.dbgCallback = dbg
	return nil
}

// debugReportCallback forwards validation layer messages to the logger
func debugReportCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	entry := log.WithFields(log.Fields{
		"layer": pLayerPrefix,
		"code":  messageCode,
	})
	switch level := debugReportLevel(flags); level {
	case log.ErrorLevel:
		entry.Error(pMessage)
	case log.WarnLevel:
		entry.Warn(pMessage)
	default:
		entry.Debug(pMessage)
	}

	// false lets the call that triggered the message continue
	return vk.Bool32(vk.False)
}

func debugReportLevel(flags vk.DebugReportFlags) log.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return log.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return log.WarnLevel
	default:
		return log.DebugLevel
	}
}

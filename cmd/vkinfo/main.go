// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/devblok/vkstrap/core"
	log "github.com/sirupsen/logrus"
	"github.com/xlab/tablewriter"
)

var (
	asJSON = flag.Bool("json", false, "Print devices as JSON")
	debug  = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	policy = flag.String("policy", core.PolicyDiscreteFirst.String(), "Device selection policy used to mark the chosen device")
)

type report struct {
	Selected int                       `json:"selected"`
	Policy   string                    `json:"policy"`
	Devices  []core.PhysicalDeviceInfo `json:"devices"`
}

func main() {
	flag.Parse()

	p, err := core.ParseSelectionPolicy(*policy)
	if err != nil {
		log.Fatal(err)
	}

	vulkan := core.NewVulkan(core.DefaultVulkanApplicationInfo)
	if err := vulkan.Load(nil); err != nil {
		log.Fatal(err)
	}

	instance, err := vulkan.CreateInstance(nil, core.InstanceConfiguration{DebugMode: *debug})
	if err != nil {
		log.Fatal(err)
	}
	defer instance.Destroy()

	devices, err := instance.PhysicalDevicesInfo()
	if err != nil {
		log.Fatal(err)
	}

	rep := report{Policy: p.String(), Devices: devices, Selected: -1}
	if idx, err := core.SelectPhysicalDevice(devices, core.SelectionConfiguration{Policy: p}); err == nil {
		rep.Selected = idx
	} else {
		log.WithError(err).Warn("No device selected")
	}

	if *asJSON {
		err = writeJSON(os.Stdout, rep)
	} else {
		err = writeTable(os.Stdout, rep)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func writeJSON(w io.Writer, rep report) error {
	bytes, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", bytes)
	return err
}

func writeTable(w io.Writer, rep report) error {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("VULKAN PHYSICAL DEVICES")
	table.AddRow("Physical GPUs", len(rep.Devices))
	table.AddRow("Selection policy", rep.Policy)

	for _, d := range rep.Devices {
		table.AddSeparator()
		name := d.Name
		if d.Index == rep.Selected {
			name += " (selected)"
		}
		table.AddRow("Physical Device Name", name)
		table.AddRow("Physical Device Type", d.Type.String())
		table.AddRow("Physical Device Vendor", fmt.Sprintf("%x", d.VendorID))
		table.AddRow("API Version", d.APIVersion)
		table.AddRow("Driver Version", d.DriverVersion)
		table.AddRow("Memory", fmt.Sprintf("%d MiB", d.Memory>>20))
		table.AddRow("Extensions", len(d.Extensions))
		table.AddRow("Layers", len(d.Layers))
	}

	_, err := fmt.Fprintln(w, table.Render())
	return err
}

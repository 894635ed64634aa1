// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strings"
)

// safeString null terminates s for the Vulkan API,
// strings that are already terminated are left alone
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

func trimNull(s string) string {
	return strings.TrimRight(s, "\x00")
}

// appendMissing appends name unless it is already in names
func appendMissing(names []string, name string) []string {
	for _, n := range names {
		if trimNull(n) == trimNull(name) {
			return names
		}
	}
	return append(names, name)
}

// missingLayers returns the requested layers that are not in available
func missingLayers(requested, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[trimNull(a)] = struct{}{}
	}

	var missing []string
	for _, r := range requested {
		if _, ok := have[trimNull(r)]; !ok {
			missing = append(missing, trimNull(r))
		}
	}
	return missing
}

// versionString formats a packed Vulkan version as major.minor.patch
func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}

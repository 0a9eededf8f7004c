package status

import (
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/keybox9823/apollo/pkg/protocol"
)

// fingerprint derives a change-detection scalar from the full record content.
// The walk is deterministic (map keys visited in sorted order) so identical
// content always hashes identically. SendTime is excluded: it is stamped by
// the outbound handler after snapshotting and is not part of the observable
// state.
func fingerprint(r *protocol.StatusRecord) uint64 {
	h := fnv.New64a()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	for _, s := range r.Modes {
		write(s)
	}
	for _, s := range r.Maps {
		write(s)
	}
	for _, s := range r.Vehicles {
		write(s)
	}
	write(r.CurrentMode)
	write(r.CurrentMap)
	write(r.CurrentVehicle)
	write(r.DockerImage)
	write(strconv.Itoa(r.UTMZoneID))

	moduleNames := make([]string, 0, len(r.Modules))
	for name := range r.Modules {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)
	for _, name := range moduleNames {
		write(name)
		write(strconv.FormatBool(r.Modules[name]))
	}

	componentNames := make([]string, 0, len(r.MonitoredComponents))
	for name := range r.MonitoredComponents {
		componentNames = append(componentNames, name)
	}
	sort.Strings(componentNames)
	for _, name := range componentNames {
		summary := r.MonitoredComponents[name]
		write(name)
		write(string(summary.Status))
		write(summary.Message)
	}

	return h.Sum64()
}

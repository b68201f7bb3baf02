package devtree

import "github.com/blocktrace/blocktrace-go/pkg/sector"

// MaxEndpoints bounds the number of endpoints one walk may collect.
const MaxEndpoints = 16

// Endpoint is one discovered transport endpoint, together with the byte
// range and sector range of the query it serves. The whole query range is
// attributed to every endpoint; per-endpoint sub-ranging would require
// multi-device fan-out, which is not modeled.
type Endpoint struct {
	PCIIdentity

	// FileStart and FileEnd are the inclusive byte range of the query.
	FileStart int64
	FileEnd   int64

	// Sectors is the device sector range computed for the query.
	Sectors sector.Range
}

// Walk follows the parent chain from start toward the root, collecting every
// PCI ancestor whose class code matches the signature, in discovery order
// (leaf toward root). It stops at the root, after MaxEndpoints matches, or
// at the first node that fails its validity check; the last case returns
// the endpoints collected so far rather than an error.
//
// Non-matching PCI nodes are skipped but do not stop the walk. An empty
// result is a valid outcome.
func Walk(start Node, match ClassMatch, fileStart, fileEnd int64, sectors sector.Range) []Endpoint {
	endpoints := make([]Endpoint, 0, 4)

	for node := start; node != nil && len(endpoints) < MaxEndpoints; node = node.Parent() {
		if !node.Valid() {
			// The hierarchy changed under us; a partial result is
			// still useful.
			break
		}

		id, ok := node.PCI()
		if !ok {
			continue
		}
		if !match.Matches(id.ClassCode) {
			continue
		}

		endpoints = append(endpoints, Endpoint{
			PCIIdentity: id,
			FileStart:   fileStart,
			FileEnd:     fileEnd,
			Sectors:     sectors,
		})
	}

	return endpoints
}

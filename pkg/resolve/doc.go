// Package resolve answers which physical transport endpoints back a byte
// range of an open file, and at which device sector offsets.
//
// A Resolver runs three steps per query: classify the file's filesystem,
// compute the device sector range for the byte range, and walk the device
// hierarchy above the backing block device collecting matching transport
// endpoints. Every query is stateless and independent; nothing is cached
// between calls and nothing outlives the query.
//
// The host environment is reached through the Handle interface, which hides
// how file metadata and the device hierarchy are obtained (sysfs on Linux,
// fakes in tests).
package resolve

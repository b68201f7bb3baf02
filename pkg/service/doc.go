// Package service hosts the resolver behind a unix-socket control call.
//
// The host-facing entry point of this design is modeled on an ioctl: one
// fixed-size request and response (see package wire) per call, exchanged
// over a unix socket. The queried file's descriptor travels with the
// request as SCM_RIGHTS ancillary data, so the service resolves the
// caller's actual open file rather than a path.
//
// A Service has an explicit create/start/stop lifecycle owned by the
// process entry point. Request handling is synchronous: one connection,
// one request, one response.
package service

// Package wire defines the request/response contract of the resolution
// service.
//
// The contract mirrors a kernel ioctl ABI: both messages are fixed-size
// little-endian records with no dynamic growth, identified by a single
// opcode. A request names an open file descriptor and a byte range; a
// response carries a status code and up to sixteen discovered transport
// endpoints. The descriptor itself travels out of band (SCM_RIGHTS over a
// unix socket); the FD field in the encoded request records the sender's
// descriptor number for diagnostics only.
package wire

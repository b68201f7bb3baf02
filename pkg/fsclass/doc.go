// Package fsclass classifies open files by the kind of storage backing them.
//
// Classification is a pure function of three observations about a file:
// the inode kind (block device node, regular file, or something else), the
// declared type name of the owning filesystem, and whether that filesystem
// exposes a backing block device. The result is one of five closed classes:
//
//   - BlockDevice: the file is a raw block device node (e.g. /dev/nvme0n1)
//   - DiskFilesystem: a regular file on a real on-device filesystem
//   - PseudoFilesystem: proc, sysfs, tmpfs and friends; no persistent backing
//   - NetworkFilesystem: NFS, CIFS and friends; storage behind a protocol
//   - Unknown: anything else (directories, sockets, pipes, ...)
//
// The name lists live in a Table rather than in the classification logic, so
// new filesystem types can be added (or loaded from a YAML file) without
// touching any caller. Classification never fails; callers reject the classes
// they cannot serve.
package fsclass

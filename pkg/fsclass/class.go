package fsclass

// Class identifies what kind of storage backs an open file.
type Class uint8

const (
	// ClassUnknown means the file is neither a block device node nor a
	// regular file, or classification could not place it anywhere else.
	ClassUnknown Class = 0

	// ClassBlockDevice means the file is a raw block device node.
	ClassBlockDevice Class = 1

	// ClassDiskFilesystem means the file is a regular file on a real
	// on-device filesystem.
	ClassDiskFilesystem Class = 2

	// ClassPseudoFilesystem means the file lives on a filesystem with no
	// persistent block-device backing (proc, sysfs, tmpfs, ...).
	ClassPseudoFilesystem Class = 3

	// ClassNetworkFilesystem means the file's storage is behind a network
	// protocol (NFS, CIFS, ...).
	ClassNetworkFilesystem Class = 4
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassUnknown:
		return "UNKNOWN"
	case ClassBlockDevice:
		return "BLOCK_DEVICE"
	case ClassDiskFilesystem:
		return "DISK_FILESYSTEM"
	case ClassPseudoFilesystem:
		return "PSEUDO_FILESYSTEM"
	case ClassNetworkFilesystem:
		return "NETWORK_FILESYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Resolvable reports whether a sector range can be computed for this class.
func (c Class) Resolvable() bool {
	return c == ClassBlockDevice || c == ClassDiskFilesystem
}

// InodeKind is the inode type of an open file, reduced to the cases the
// classifier distinguishes.
type InodeKind uint8

const (
	// KindOther covers directories, sockets, pipes, char devices, symlinks.
	KindOther InodeKind = 0
	// KindRegular is a regular file.
	KindRegular InodeKind = 1
	// KindBlockDevice is a block device node.
	KindBlockDevice InodeKind = 2
)

// String returns the inode kind name.
func (k InodeKind) String() string {
	switch k {
	case KindRegular:
		return "REGULAR"
	case KindBlockDevice:
		return "BLOCK_DEVICE"
	default:
		return "OTHER"
	}
}

// FileMeta is the storage metadata of an open file at query time.
// It is the sole input to classification.
type FileMeta struct {
	// Kind is the inode type.
	Kind InodeKind

	// FSType is the declared type name of the owning filesystem
	// (e.g. "ext4", "tmpfs"). Empty for block device nodes.
	FSType string

	// BlockSize is the filesystem block size in bytes. Zero when unknown.
	BlockSize int64

	// HasBackingDevice reports whether the owning filesystem exposes a
	// backing block device reference.
	HasBackingDevice bool
}

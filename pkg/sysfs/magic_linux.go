//go:build linux

package sysfs

import "fmt"

// Filesystem magic numbers from linux/magic.h. The ext magic is shared by
// ext2, ext3 and ext4; the name "ext4" stands in for the family, which is
// all the classification table needs.
const (
	magicExt       = 0xef53
	magicXFS       = 0x58465342
	magicBtrfs     = 0x9123683e
	magicF2FS      = 0xf2f52010
	magicVFAT      = 0x4d44
	magicExFAT     = 0x2011bab0
	magicNTFS3     = 0x7366746e
	magicSquashFS  = 0x73717368
	magicISOFS     = 0x9660
	magicOverlay   = 0x794c7630
	magicTmpfs     = 0x01021994
	magicRamfs     = 0x858458f6
	magicProc      = 0x9fa0
	magicSysfs     = 0x62656572
	magicDevpts    = 0x1cd1
	magicCgroup    = 0x27e0eb
	magicCgroup2   = 0x63677270
	magicPstore    = 0x6165676c
	magicDebugfs   = 0x64626720
	magicTracefs   = 0x74726163
	magicSecurity  = 0x73636673
	magicConfigfs  = 0x62656570
	magicHugetlbfs = 0x958458f6
	magicMqueue    = 0x19800202
	magicBPF       = 0xcafe4a11
	magicNFS       = 0x6969
	magicCIFS      = 0xff534d42
	magicSMB2      = 0xfe534d42
	magicV9FS      = 0x01021997
	magicCeph      = 0x00c36400
	magicFuse      = 0x65735546
)

// fsTypeName maps a statfs magic number to the filesystem type name the
// classification table uses. Unrecognized magics yield a synthetic name so
// classification falls through to the backing-device heuristic.
func fsTypeName(magic int64) string {
	switch magic {
	case magicExt:
		return "ext4"
	case magicXFS:
		return "xfs"
	case magicBtrfs:
		return "btrfs"
	case magicF2FS:
		return "f2fs"
	case magicVFAT:
		return "vfat"
	case magicExFAT:
		return "exfat"
	case magicNTFS3:
		return "ntfs3"
	case magicSquashFS:
		return "squashfs"
	case magicISOFS:
		return "iso9660"
	case magicOverlay:
		return "overlay"
	case magicTmpfs:
		return "tmpfs"
	case magicRamfs:
		return "ramfs"
	case magicProc:
		return "proc"
	case magicSysfs:
		return "sysfs"
	case magicDevpts:
		return "devpts"
	case magicCgroup:
		return "cgroup"
	case magicCgroup2:
		return "cgroup2"
	case magicPstore:
		return "pstore"
	case magicDebugfs:
		return "debugfs"
	case magicTracefs:
		return "tracefs"
	case magicSecurity:
		return "securityfs"
	case magicConfigfs:
		return "configfs"
	case magicHugetlbfs:
		return "hugetlbfs"
	case magicMqueue:
		return "mqueue"
	case magicBPF:
		return "bpf"
	case magicNFS:
		return "nfs"
	case magicCIFS:
		return "cifs"
	case magicSMB2:
		return "smb3"
	case magicV9FS:
		return "9p"
	case magicCeph:
		return "ceph"
	case magicFuse:
		return "fuse"
	default:
		return fmt.Sprintf("unknown(0x%x)", magic)
	}
}

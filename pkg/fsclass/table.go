package fsclass

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blocktrace/blocktrace-go/pkg/version"
)

// Default filesystem type name lists. The disk list deliberately names real
// on-device filesystems that may not expose a single backing block device
// (btrfs with multiple devices, for instance); the allow-list check runs
// before the backing-device heuristic for exactly that reason.
var (
	defaultDisk = []string{
		"ext2", "ext3", "ext4", "xfs", "btrfs", "f2fs", "vfat", "exfat",
	}
	defaultPseudo = []string{
		"proc", "sysfs", "tmpfs", "devtmpfs", "devpts", "cgroup",
		"cgroup2", "pstore", "debugfs", "tracefs", "securityfs",
		"configfs", "hugetlbfs", "mqueue", "bpf",
	}
	defaultNetwork = []string{
		"nfs", "nfs4", "cifs", "smb3", "9p", "ceph", "glusterfs", "fuse",
	}
)

// Table maps filesystem type names to classes. It replaces scattered string
// comparisons with one versionable value; a zero Table is not usable, build
// one with DefaultTable or ParseTable.
type Table struct {
	disk    map[string]struct{}
	pseudo  map[string]struct{}
	network map[string]struct{}
}

// tableFile is the YAML form of a Table.
type tableFile struct {
	Version string   `yaml:"version"`
	Disk    []string `yaml:"disk"`
	Pseudo  []string `yaml:"pseudo"`
	Network []string `yaml:"network"`
}

// DefaultTable returns a Table with the built-in name lists.
func DefaultTable() *Table {
	return newTable(defaultDisk, defaultPseudo, defaultNetwork)
}

// ParseTable builds a Table from YAML bytes. Sections left empty in the file
// fall back to the built-in lists, so a file can extend just one list. An
// optional version field is checked for compatibility with
// version.TableFormat.
func ParseTable(data []byte) (*Table, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing filesystem table: %w", err)
	}
	if tf.Version != "" {
		got, err := version.Parse(tf.Version)
		if err != nil {
			return nil, fmt.Errorf("filesystem table: %w", err)
		}
		want, _ := version.Parse(version.TableFormat)
		if !want.Compatible(got) {
			return nil, fmt.Errorf("filesystem table version %s is not compatible with %s", got, version.TableFormat)
		}
	}
	if len(tf.Disk) == 0 {
		tf.Disk = defaultDisk
	}
	if len(tf.Pseudo) == 0 {
		tf.Pseudo = defaultPseudo
	}
	if len(tf.Network) == 0 {
		tf.Network = defaultNetwork
	}
	return newTable(tf.Disk, tf.Pseudo, tf.Network), nil
}

// LoadTable loads and parses a Table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseTable(data)
}

func newTable(disk, pseudo, network []string) *Table {
	t := &Table{
		disk:    make(map[string]struct{}, len(disk)),
		pseudo:  make(map[string]struct{}, len(pseudo)),
		network: make(map[string]struct{}, len(network)),
	}
	for _, name := range disk {
		t.disk[name] = struct{}{}
	}
	for _, name := range pseudo {
		t.pseudo[name] = struct{}{}
	}
	for _, name := range network {
		t.network[name] = struct{}{}
	}
	return t
}

// Classify maps file metadata to a storage class. It is total and
// deterministic: every input yields exactly one class and no error.
//
// For regular files the disk allow-list is checked first and short-circuits
// the remaining heuristics: a filesystem known to be on-device is classified
// as such even when it exposes no single backing block device. Names matching
// neither list fall back to the backing-device heuristic.
func (t *Table) Classify(meta FileMeta) Class {
	switch meta.Kind {
	case KindBlockDevice:
		return ClassBlockDevice
	case KindRegular:
		// fall through to filesystem inspection
	default:
		return ClassUnknown
	}

	if _, ok := t.disk[meta.FSType]; ok {
		return ClassDiskFilesystem
	}
	if _, ok := t.pseudo[meta.FSType]; ok {
		return ClassPseudoFilesystem
	}
	if _, ok := t.network[meta.FSType]; ok {
		return ClassNetworkFilesystem
	}
	if !meta.HasBackingDevice {
		return ClassPseudoFilesystem
	}
	return ClassDiskFilesystem
}

package pathtree

import (
	"fmt"
	"io/fs"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// FileType is the kind of filesystem object a node represents. It governs
// existence checks, content comparison, and creation.
type FileType int

const (
	Unknown FileType = iota
	RegularFile
	Directory
	SymbolicLink
)

// String returns the configuration identifier for the type.
func (t FileType) String() string {
	switch t {
	case RegularFile:
		return "file"
	case Directory:
		return "dir"
	case SymbolicLink:
		return "symlink"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("FileType(%d)", int(t))
	}
}

// ParseFileType converts a configuration identifier into a FileType.
func ParseFileType(s string) (FileType, error) {
	switch s {
	case "file":
		return RegularFile, nil
	case "dir":
		return Directory, nil
	case "symlink":
		return SymbolicLink, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("%w: unknown file type %q (want file, dir, symlink or unknown)", fstage.ErrInvalidArgument, s)
	}
}

// TypeOfMode maps a file mode onto a FileType.
func TypeOfMode(mode fs.FileMode) FileType {
	switch {
	case mode.IsDir():
		return Directory
	case mode&fs.ModeSymlink != 0:
		return SymbolicLink
	case mode.IsRegular():
		return RegularFile
	default:
		return Unknown
	}
}

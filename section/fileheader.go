package section

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
)

// Version is a format major.minor pair.
type Version struct {
	Major int8
	Minor int8
}

// CurrentVersion is the only version this core writes.
var CurrentVersion = Version{Major: 1, Minor: 0}

// knownVersions lists every (major, minor) a reader accepts.
var knownVersions = []Version{{Major: 1, Minor: 0}}

// WriteFileHeader emits the file header: magic + 0x01 + major + minor,
// always CurrentVersion.
func WriteFileHeader(w io.Writer) error {
	if err := WriteMagic(w, format.SectionFileHeader); err != nil {
		return err
	}
	_, err := w.Write([]byte{byte(CurrentVersion.Major), byte(CurrentVersion.Minor)})
	return err
}

// ReadFileHeader reads and validates the file header, returning its
// version. An unrecognized (major, minor) pair is a FormatError.
func ReadFileHeader(r io.Reader) (Version, error) {
	tag, err := ReadTag(r)
	if err != nil {
		return Version{}, err
	}
	if tag != format.SectionFileHeader {
		return Version{}, errs.NewFormatError(errs.KindUnknownSectionTag, "expected file header section", nil)
	}
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Version{}, errs.NewFormatError(errs.KindUnexpectedEOF, "short read of file header version", err)
	}
	v := Version{Major: int8(buf[0]), Minor: int8(buf[1])}
	for _, known := range knownVersions {
		if known == v {
			return v, nil
		}
	}
	return Version{}, errs.NewFormatError(errs.KindUnsupportedVersion, "unsupported format version", nil)
}

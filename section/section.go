// Package section implements the SBDF section framing layer (spec
// component 6): the magic-number + section-tag envelope, the file
// header, the table-metadata section, and the table-slice/column-slice
// codecs.
package section

import (
	"io"

	"github.com/sbdf-go/sbdf/errs"
	"github.com/sbdf-go/sbdf/format"
	"github.com/sbdf-go/sbdf/internal/bytesx"
)

// magic is the two-byte section marker, 0xDF 0x5B (little-endian 0x5BDF).
var magic = [2]byte{0xDF, 0x5B}

// WriteMagic emits the two-byte section marker followed by tag.
func WriteMagic(w io.Writer, tag format.SectionTag) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	_, err := w.Write([]byte{byte(tag)})
	return err
}

// ReadTag reads and validates the magic number, returning the section
// tag that follows it. Any other tag value is left for the caller to
// reject; an unrecognized byte pattern for the magic itself fails here.
func ReadTag(r io.Reader) (format.SectionTag, error) {
	var buf [3]byte
	if err := bytesx.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	if buf[0] != magic[0] || buf[1] != magic[1] {
		return 0, errs.NewFormatError(errs.KindBadMagic, "section did not start with 0xDF 0x5B", nil)
	}
	return format.SectionTag(buf[2]), nil
}

package section

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileHeaderWireBytes(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(WriteFileHeader(&buf))
	require.Equal([]byte{0xDF, 0x5B, 0x01, 0x01, 0x00}, buf.Bytes())

	v, err := ReadFileHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(err)
	require.Equal(CurrentVersion, v)
}

func TestFileHeaderRejectsUnknownVersion(t *testing.T) {
	require := require.New(t)

	buf := []byte{0xDF, 0x5B, 0x01, 0x09, 0x09}
	_, err := ReadFileHeader(bytes.NewReader(buf))
	require.Error(err)
}

func TestFileHeaderRejectsBadMagic(t *testing.T) {
	require := require.New(t)

	buf := []byte{0x00, 0x00, 0x01, 0x01, 0x00}
	_, err := ReadFileHeader(bytes.NewReader(buf))
	require.Error(err)
}

func TestEmptyTableSliceWireBytes(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(WriteTableSlice(&buf, nil))
	require.Equal([]byte{0xDF, 0x5B, 0x03, 0x00, 0x00, 0x00, 0x00}, buf.Bytes())

	cols, err := ReadTableSlice(bytes.NewReader(buf.Bytes()), nil)
	require.NoError(err)
	require.Empty(cols)
}

func TestTableEndWireBytes(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	require.NoError(WriteTableEnd(&buf))
	require.Equal([]byte{0xDF, 0x5B, 0x05}, buf.Bytes())
}

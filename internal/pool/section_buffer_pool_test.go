package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferWriteAccumulates(t *testing.T) {
	require := require.New(t)

	buf := newBuffer()
	n, err := buf.Write([]byte("hello"))
	require.NoError(err)
	require.Equal(5, n)
	n, err = buf.Write([]byte(" world"))
	require.NoError(err)
	require.Equal(6, n)
	require.Equal("hello world", string(buf.Bytes()))
	require.Equal(11, buf.Len())
}

func TestBufferWriteGrowsPastStartCapacity(t *testing.T) {
	require := require.New(t)

	buf := newBuffer()
	payload := bytes.Repeat([]byte{'x'}, startCapacity+1024)
	_, err := buf.Write(payload)
	require.NoError(err)
	require.Equal(payload, buf.Bytes())
	require.GreaterOrEqual(cap(buf.b), len(payload))
}

func TestBufferGrowDoublesUntilSufficient(t *testing.T) {
	require := require.New(t)

	buf := &Buffer{b: make([]byte, 0, 8)}
	buf.grow(100)
	require.GreaterOrEqual(cap(buf.b), 108)
	// doubling from 8 never lands exactly on 108; confirm it's a power-of-two multiple of 8.
	require.Equal(0, (cap(buf.b)/8)&(cap(buf.b)/8-1))
}

func TestBufferResetKeepsBackingArray(t *testing.T) {
	require := require.New(t)

	buf := newBuffer()
	_, err := buf.Write([]byte("data"))
	require.NoError(err)
	backing := cap(buf.b)

	buf.Reset()
	require.Equal(0, buf.Len())
	require.Equal(backing, cap(buf.b))
}

func TestBufferWriteTo(t *testing.T) {
	require := require.New(t)

	buf := newBuffer()
	_, err := buf.Write([]byte("payload"))
	require.NoError(err)

	var dst bytes.Buffer
	n, err := buf.WriteTo(&dst)
	require.NoError(err)
	require.Equal(int64(7), n)
	require.Equal("payload", dst.String())
}

type errorWriter struct{ err error }

func (w errorWriter) Write([]byte) (int, error) { return 0, w.err }

func TestBufferWriteToPropagatesError(t *testing.T) {
	require := require.New(t)

	buf := newBuffer()
	_, err := buf.Write([]byte("data"))
	require.NoError(err)

	wantErr := errors.New("sink closed")
	_, err = buf.WriteTo(errorWriter{err: wantErr})
	require.ErrorIs(err, wantErr)
}

func TestGetSectionBufferIsEmpty(t *testing.T) {
	require := require.New(t)

	buf := GetSectionBuffer()
	require.Equal(0, buf.Len())
	PutSectionBuffer(buf)
}

func TestPutSectionBufferNilIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		PutSectionBuffer(nil)
	})
}

func TestPutSectionBufferResetsBeforeReuse(t *testing.T) {
	require := require.New(t)

	buf := GetSectionBuffer()
	_, err := buf.Write([]byte("leftover"))
	require.NoError(err)
	PutSectionBuffer(buf)

	reused := GetSectionBuffer()
	require.Equal(0, reused.Len())
}

func TestPutSectionBufferDiscardsOversizedBuffers(t *testing.T) {
	require := require.New(t)

	oversized := &Buffer{b: make([]byte, 0, retainCeiling+1)}
	PutSectionBuffer(oversized)

	for i := 0; i < 32; i++ {
		got := GetSectionBuffer()
		require.LessOrEqual(cap(got.b), retainCeiling)
		PutSectionBuffer(got)
	}
}

func TestSectionBufferPoolConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf := GetSectionBuffer()
				_, _ = buf.Write([]byte("concurrent"))
				PutSectionBuffer(buf)
			}
		}()
	}
	wg.Wait()
}

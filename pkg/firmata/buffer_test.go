package firmata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameBuffer(t *testing.T) {
	var buf FrameBuffer
	for i := 0; i < MaxSize; i++ {
		require.NoError(t, buf.Append(byte(i)))
	}
	require.Equal(t, ErrSysexOverflow, buf.Append(0))
	require.Equal(t, MaxSize, buf.Len())
	require.Equal(t, byte(MaxSize-1), buf.At(MaxSize-1))
	require.Zero(t, buf.At(MaxSize))
	require.Zero(t, buf.At(-1))

	buf.Clear()
	require.Zero(t, buf.Len())
	require.Empty(t, buf.Bytes())
	require.Zero(t, buf.At(0))
	require.NoError(t, buf.Append(7))
	require.Equal(t, []byte{7}, buf.Bytes())
}

func TestFrameBufferCapacity(t *testing.T) {
	buf := NewFrameBuffer(MaxSize * 2)
	require.Equal(t, MaxSize*2, buf.Cap())
	for i := 0; i < MaxSize*2; i++ {
		require.NoError(t, buf.Append(1))
	}
	require.Equal(t, ErrSysexOverflow, buf.Append(1))
	buf.SetCapacity(8)
	require.Equal(t, MaxSize, buf.Cap())
	require.Zero(t, buf.Len())
}

package dicomtag_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tanager-health/dicomcore/dicomtag"
)

func TestGroupElement(t *testing.T) {
	tag := dicomtag.New(0x00080018)
	require.Equal(t, uint16(0x0008), tag.Group)
	require.Equal(t, uint16(0x0018), tag.Element)
	require.Equal(t, uint32(0x00080018), tag.Packed())
}

func TestIsPrivate(t *testing.T) {
	require.True(t, dicomtag.Tag{Group: 0x0009}.IsPrivate())
	require.False(t, dicomtag.Tag{Group: 0x0008}.IsPrivate())
}

func TestCompareOrdersByGroupThenElement(t *testing.T) {
	a := dicomtag.Tag{Group: 0x0008, Element: 0x0018}
	b := dicomtag.Tag{Group: 0x0008, Element: 0x0020}
	c := dicomtag.Tag{Group: 0x0010, Element: 0x0000}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))
	require.True(t, b.Less(c))
}

func TestString(t *testing.T) {
	require.Equal(t, "(0008,0018)", dicomtag.Tag{Group: 0x0008, Element: 0x0018}.String())
}

func TestIsPixelDataTag(t *testing.T) {
	require.True(t, dicomtag.IsPixelDataTag(dicomtag.PixelData))
	require.True(t, dicomtag.IsPixelDataTag(dicomtag.FloatPixelData))
	require.False(t, dicomtag.IsPixelDataTag(dicomtag.Item))
}

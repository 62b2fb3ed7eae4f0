package dicom_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	dicom "github.com/tanager-health/dicomcore"
	"github.com/tanager-health/dicomcore/dicomerr"
)

func TestNewStringsValueEvenLengthAndVM(t *testing.T) {
	v, err := dicom.NewStringsValue("LO", []string{"AB", "CDE"})
	require.NoError(t, err)
	require.Equal(t, 2, v.VM())
	// "AB" + "CDE" + 2 separator bytes = 7, padded to 8.
	require.EqualValues(t, 8, v.Length())

	got, err := v.Strings()
	require.NoError(t, err)
	require.Equal(t, []string{"AB", "CDE"}, got)
}

func TestNewStringsValueEmptyYieldsSingleEmptyString(t *testing.T) {
	v, err := dicom.NewStringsValue("CS", nil)
	require.NoError(t, err)
	require.Equal(t, 1, v.VM())
}

func TestNewStringsValueRejectsWrongVR(t *testing.T) {
	_, err := dicom.NewStringsValue("US", []string{"x"})
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.InvalidVR))
}

func TestNewStringsValueRejectsOverCapacity(t *testing.T) {
	_, err := dicom.NewStringsValue("AE", []string{"this-name-is-far-too-long-for-ae"})
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.ValueTooLong))
}

func TestNewTextValueOddLengthIsPadded(t *testing.T) {
	v, err := dicom.NewTextValue("LT", "odd")
	require.NoError(t, err)
	require.Equal(t, 1, v.VM())
	require.EqualValues(t, 4, v.Length())
}

func TestNewBytesValue(t *testing.T) {
	v, err := dicom.NewBytesValue("OB", []byte{1, 2, 3})
	require.NoError(t, err)
	require.EqualValues(t, 4, v.Length())
	got, err := v.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestNumericAccessorsRejectWrongKind(t *testing.T) {
	v, err := dicom.NewUint16sValue("US", []uint16{1, 2})
	require.NoError(t, err)

	_, err = v.Int32s()
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.Malformed))

	got, err := v.Uint16s()
	require.NoError(t, err)
	require.Equal(t, []uint16{1, 2}, got)
	require.EqualValues(t, 4, v.Length())
}

func TestValueDestroyInvalidatesAccessors(t *testing.T) {
	v, err := dicom.NewFloat64sValue("FD", []float64{1.5})
	require.NoError(t, err)
	v.Destroy()
	v.Destroy() // idempotent

	_, err = v.Float64s()
	require.Error(t, err)
	require.True(t, dicomerr.Is(err, dicomerr.Malformed))
}

func TestValueCloneIsIndependent(t *testing.T) {
	v, err := dicom.NewUint32sValue("UL", []uint32{9})
	require.NoError(t, err)
	c := v.Clone()
	v.Destroy()

	_, err = c.Uint32s()
	require.NoError(t, err)
}

func TestSequenceValueDestroyRecurses(t *testing.T) {
	seq := dicom.NewSequence()
	v, err := dicom.NewSequenceValue(seq)
	require.NoError(t, err)

	v.Destroy()
	require.True(t, seq.IsLocked() == false) // destroy does not imply lock
	err = seq.Append(dicom.NewDataset())
	require.Error(t, err)
}

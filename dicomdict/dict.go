// Package dicomdict is the dictionary collaborator: the keyword/VR lookup
// by tag that the core's stream reader (for implicit-VR decoding) and
// tag-validity predicates consult, but that the core itself treats as an
// external, swappable backing table.
package dicomdict

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"

	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomvr"
)

// Entry is one dictionary record: a tag's VR, keyword, and value
// multiplicity as declared by the standard.
type Entry struct {
	Tag     dicomtag.Tag
	VR      dicomvr.VR
	Keyword string
	VM      string
}

// table is the implementation-defined backing store for vr_of/keyword_of.
// It is intentionally a representative subset of the standard's data
// dictionary -- the dictionary is out of core scope; callers needing full
// standard coverage can Register additional entries.
var table = map[dicomtag.Tag]Entry{
	{Group: 0x0002, Element: 0x0000}: {dicomtag.Tag{Group: 0x0002, Element: 0x0000}, "UL", "FileMetaInformationGroupLength", "1"},
	{Group: 0x0002, Element: 0x0001}: {dicomtag.Tag{Group: 0x0002, Element: 0x0001}, "OB", "FileMetaInformationVersion", "1"},
	{Group: 0x0002, Element: 0x0002}: {dicomtag.Tag{Group: 0x0002, Element: 0x0002}, "UI", "MediaStorageSOPClassUID", "1"},
	{Group: 0x0002, Element: 0x0003}: {dicomtag.Tag{Group: 0x0002, Element: 0x0003}, "UI", "MediaStorageSOPInstanceUID", "1"},
	{Group: 0x0002, Element: 0x0010}: {dicomtag.Tag{Group: 0x0002, Element: 0x0010}, "UI", "TransferSyntaxUID", "1"},
	{Group: 0x0002, Element: 0x0012}: {dicomtag.Tag{Group: 0x0002, Element: 0x0012}, "UI", "ImplementationClassUID", "1"},
	{Group: 0x0002, Element: 0x0013}: {dicomtag.Tag{Group: 0x0002, Element: 0x0013}, "SH", "ImplementationVersionName", "1"},

	{Group: 0x0008, Element: 0x0008}: {dicomtag.Tag{Group: 0x0008, Element: 0x0008}, "CS", "ImageType", "2-n"},
	{Group: 0x0008, Element: 0x0016}: {dicomtag.Tag{Group: 0x0008, Element: 0x0016}, "UI", "SOPClassUID", "1"},
	{Group: 0x0008, Element: 0x0018}: {dicomtag.Tag{Group: 0x0008, Element: 0x0018}, "UI", "SOPInstanceUID", "1"},
	{Group: 0x0008, Element: 0x0020}: {dicomtag.Tag{Group: 0x0008, Element: 0x0020}, "DA", "StudyDate", "1"},
	{Group: 0x0008, Element: 0x0030}: {dicomtag.Tag{Group: 0x0008, Element: 0x0030}, "TM", "StudyTime", "1"},
	{Group: 0x0008, Element: 0x0060}: {dicomtag.Tag{Group: 0x0008, Element: 0x0060}, "CS", "Modality", "1"},
	{Group: 0x0008, Element: 0x0080}: {dicomtag.Tag{Group: 0x0008, Element: 0x0080}, "LO", "InstitutionName", "1"},

	{Group: 0x0010, Element: 0x0010}: {dicomtag.Tag{Group: 0x0010, Element: 0x0010}, "PN", "PatientName", "1"},
	{Group: 0x0010, Element: 0x0020}: {dicomtag.Tag{Group: 0x0010, Element: 0x0020}, "LO", "PatientID", "1"},
	{Group: 0x0010, Element: 0x0030}: {dicomtag.Tag{Group: 0x0010, Element: 0x0030}, "DA", "PatientBirthDate", "1"},
	{Group: 0x0010, Element: 0x0040}: {dicomtag.Tag{Group: 0x0010, Element: 0x0040}, "CS", "PatientSex", "1"},

	{Group: 0x0018, Element: 0x0050}: {dicomtag.Tag{Group: 0x0018, Element: 0x0050}, "DS", "SliceThickness", "1"},

	{Group: 0x0020, Element: 0x000D}: {dicomtag.Tag{Group: 0x0020, Element: 0x000D}, "UI", "StudyInstanceUID", "1"},
	{Group: 0x0020, Element: 0x000E}: {dicomtag.Tag{Group: 0x0020, Element: 0x000E}, "UI", "SeriesInstanceUID", "1"},

	{Group: 0x0028, Element: 0x0002}: {dicomtag.Tag{Group: 0x0028, Element: 0x0002}, "US", "SamplesPerPixel", "1"},
	{Group: 0x0028, Element: 0x0004}: {dicomtag.Tag{Group: 0x0028, Element: 0x0004}, "CS", "PhotometricInterpretation", "1"},
	{Group: 0x0028, Element: 0x0006}: {dicomtag.Tag{Group: 0x0028, Element: 0x0006}, "US", "PlanarConfiguration", "1"},
	{Group: 0x0028, Element: 0x0008}: {dicomtag.Tag{Group: 0x0028, Element: 0x0008}, "IS", "NumberOfFrames", "1"},
	{Group: 0x0028, Element: 0x0010}: {dicomtag.Tag{Group: 0x0028, Element: 0x0010}, "US", "Rows", "1"},
	{Group: 0x0028, Element: 0x0011}: {dicomtag.Tag{Group: 0x0028, Element: 0x0011}, "US", "Columns", "1"},
	{Group: 0x0028, Element: 0x0100}: {dicomtag.Tag{Group: 0x0028, Element: 0x0100}, "US", "BitsAllocated", "1"},
	{Group: 0x0028, Element: 0x0101}: {dicomtag.Tag{Group: 0x0028, Element: 0x0101}, "US", "BitsStored", "1"},
	{Group: 0x0028, Element: 0x0102}: {dicomtag.Tag{Group: 0x0028, Element: 0x0102}, "US", "HighBit", "1"},
	{Group: 0x0028, Element: 0x0103}: {dicomtag.Tag{Group: 0x0028, Element: 0x0103}, "US", "PixelRepresentation", "1"},
	{Group: 0x0028, Element: 0x9110}: {dicomtag.Tag{Group: 0x0028, Element: 0x9110}, "SQ", "PixelMeasuresSequence", "1"},

	{Group: 0x7FE0, Element: 0x0008}: {dicomtag.Tag{Group: 0x7FE0, Element: 0x0008}, "OF", "FloatPixelData", "1"},
	{Group: 0x7FE0, Element: 0x0009}: {dicomtag.Tag{Group: 0x7FE0, Element: 0x0009}, "OD", "DoubleFloatPixelData", "1"},
	{Group: 0x7FE0, Element: 0x0010}: {dicomtag.Tag{Group: 0x7FE0, Element: 0x0010}, "OW", "PixelData", "1"},
}

// Register adds or overrides a dictionary entry. Hosts that need full
// standard coverage load their own table this way at startup.
func Register(e Entry) {
	table[e.Tag] = e
}

// Find resolves a tag to its dictionary entry.
func Find(tag dicomtag.Tag) (Entry, bool) {
	if tag.Group%2 == 0 && tag.Element == 0x0000 {
		// Every even group has an implicit group-length element, PS3.5 7.2.
		if _, ok := table[tag]; !ok {
			return Entry{Tag: tag, VR: "UL", Keyword: "GenericGroupLength", VM: "1"}, true
		}
	}
	e, ok := table[tag]
	return e, ok
}

// VRFor implements the dictionary's vr_of(tag) operation.
func VRFor(tag dicomtag.Tag) (dicomvr.VR, bool) {
	e, ok := Find(tag)
	if !ok {
		return "", false
	}
	return e.VR, true
}

// KeywordFor implements the dictionary's keyword_of(tag) operation.
func KeywordFor(tag dicomtag.Tag) (string, bool) {
	e, ok := Find(tag)
	if !ok {
		return "", false
	}
	return e.Keyword, true
}

// IsPublic reports whether the tag's group is even and the dictionary
// resolves it.
func IsPublic(tag dicomtag.Tag) bool {
	if tag.IsPrivate() {
		return false
	}
	_, ok := Find(tag)
	return ok
}

// IsValid reports whether tag is public, a reserved item/delimiter tag, or
// in a private (odd) group.
func IsValid(tag dicomtag.Tag) bool {
	switch tag {
	case dicomtag.Item, dicomtag.ItemDelimitationItem, dicomtag.SequenceDelimitationItem, dicomtag.DatasetTrailingPadding:
		return true
	}
	if tag.IsPrivate() {
		return true
	}
	return IsPublic(tag)
}

// DebugString renders a human-readable "(gggg,eeee)[Keyword]" string,
// falling back to "[private]" / "[??]" when the tag isn't resolvable.
func DebugString(tag dicomtag.Tag) string {
	e, ok := Find(tag)
	if !ok {
		if tag.IsPrivate() {
			return fmt.Sprintf("%s[private]", tag.String())
		}
		return fmt.Sprintf("%s[??]", tag.String())
	}
	return fmt.Sprintf("%s[%s]", tag.String(), e.Keyword)
}

// FindByPattern returns every dictionary entry whose keyword matches the
// glob pattern (e.g. "Patient*"), sorted by tag. Not part of the spec's
// vr_of/keyword_of surface -- a debugging/tooling convenience re-homing the
// teacher's query/retrieve glob matcher onto dictionary keyword search.
func FindByPattern(pattern string) ([]Entry, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("dicomdict: invalid pattern %q: %w", pattern, err)
	}
	var matches []Entry
	for _, e := range table {
		if g.Match(e.Keyword) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Tag.Less(matches[j].Tag) })
	return matches, nil
}

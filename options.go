package dicom

import "github.com/tanager-health/dicomcore/dicomtag"

// parseOptions collects the optional behavior of Parse, built up by the
// ParseOption functions below. The teacher's ReadOptions struct-of-flags
// becomes a functional-options set, matching the shape the rest of the
// retrieved corpus uses for parser configuration.
type parseOptions struct {
	returnTags []dicomtag.Tag
	stopAtTag  *dicomtag.Tag
}

// ParseOption configures a Parse call.
type ParseOption func(*parseOptions)

// WithReturnTags restricts the returned Dataset to the given tags. If
// never supplied, every element is kept.
func WithReturnTags(tags []dicomtag.Tag) ParseOption {
	return func(o *parseOptions) { o.returnTags = append([]dicomtag.Tag(nil), tags...) }
}

// WithStopAtTag stops dataset parsing once an element with a tag at or
// past stopAt is reached, without consuming it.
func WithStopAtTag(stopAt dicomtag.Tag) ParseOption {
	return func(o *parseOptions) { o.stopAtTag = &stopAt }
}

func (o *parseOptions) keepTag(tag dicomtag.Tag) bool {
	if o.returnTags == nil {
		return true
	}
	for _, t := range o.returnTags {
		if t == tag {
			return true
		}
	}
	return false
}

func (o *parseOptions) stoppedAt(tag dicomtag.Tag) bool {
	return o.stopAtTag != nil && tag.Compare(*o.stopAtTag) >= 0
}

package richtext

import (
	"fmt"
	"strings"
)

// Image size presets and alignments. These travel as attributes on the
// image node itself, never as separate protocol concepts.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeFull   = "full"
)

const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// ImageOptions describes an image insertion. Source is either a data URL
// (local upload, already encoded by the client) or a remote http(s) URL.
type ImageOptions struct {
	Source  string `json:"source"`
	Size    string `json:"size"`
	Caption string `json:"caption,omitempty"`
	Align   string `json:"align"`
}

func (o ImageOptions) Validate() error {
	if !strings.HasPrefix(o.Source, "data:") &&
		!strings.HasPrefix(o.Source, "http://") &&
		!strings.HasPrefix(o.Source, "https://") {
		return fmt.Errorf("image source must be a data URL or an http(s) URL")
	}
	switch o.Size {
	case SizeSmall, SizeMedium, SizeLarge, SizeFull:
	default:
		return fmt.Errorf("unknown image size %q", o.Size)
	}
	switch o.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("unknown image alignment %q", o.Align)
	}
	return nil
}

func newImageNode(o ImageOptions) *Node {
	return &Node{
		Type:    NodeImage,
		Src:     o.Source,
		Size:    o.Size,
		Caption: o.Caption,
		Align:   o.Align,
	}
}

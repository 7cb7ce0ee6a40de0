package converter

import (
	"fmt"

	"github.com/rgonek/uniast-converter/internal/target"
	"github.com/rgonek/uniast-converter/reference"
	"github.com/rgonek/uniast-converter/uniast"
)

// convertImage returns nil, with a warning, for images without a URL.
func (s *state) convertImage(block Block, path string) *uniast.Image {
	url := block.Props.String("url")
	if url == "" {
		s.logger.Debug("Dropping image without URL", "path", path)
		s.addWarning(WarningDroppedBlock, block.Type, fmt.Sprintf("%s: image without URL dropped", path))
		return nil
	}

	img := &uniast.Image{
		Caption: block.Props.String("caption"),
		Alt:     block.Props.String("name"),
		Styles:  uniast.ImageStyles{Alignment: block.Props.String("textAlignment")},
	}
	if width, ok := block.Props.Int("previewWidth"); ok && width > 0 {
		img.WidthPx = uniast.IntPtr(width)
	}
	s.targets.Add(&img.Target, target.Request{Raw: url, Kind: reference.KindAttachment})
	return img
}

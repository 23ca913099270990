package imageprocessor

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

func init() {
	// Register maker-note parsers once for richer camera metadata
	exif.RegisterParsers(mknote.All...)
}

// Metadata carries the camera EXIF fields collaborators persist alongside an
// item. Every field is optional; Tags holds the raw tag dump.
type Metadata struct {
	CameraModel  string            `json:"camera_model,omitempty"`
	TakenAt      *time.Time        `json:"taken_at,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	ExposureTime string            `json:"exposure_time,omitempty"`
	Aperture     string            `json:"aperture,omitempty"`
	ISO          int               `json:"iso,omitempty"`
	FocalLength  string            `json:"focal_length,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
}

type tagCollector struct {
	tags map[string]string
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags[string(name)] = tag.String()
	return nil
}

// ExtractMetadata reads the EXIF block of the image at path. Images without
// EXIF data yield nil without error; the fields themselves are best-effort.
func ExtractMetadata(path string) (*Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		log.Infof("[ImageProcessor] no EXIF data in %s: %v", path, err)
		return nil, nil
	}

	meta := &Metadata{Tags: make(map[string]string)}

	collector := &tagCollector{tags: meta.Tags}
	if err := x.Walk(collector); err != nil {
		log.Warnf("[ImageProcessor] EXIF tag walk failed for %s: %v", path, err)
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			meta.CameraModel = model
		}
	}

	if takenAt, err := x.DateTime(); err == nil {
		meta.TakenAt = &takenAt
	}

	if lat, long, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}

	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.ExposureTime = fmt.Sprintf("%d/%d", num, den)
		}
	}

	if tag, err := x.Get(exif.FNumber); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.Aperture = fmt.Sprintf("f/%.1f", float64(num)/float64(den))
		}
	}

	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			meta.ISO = iso
		}
	}

	if tag, err := x.Get(exif.FocalLength); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			meta.FocalLength = fmt.Sprintf("%.1fmm", float64(num)/float64(den))
		}
	}

	return meta, nil
}

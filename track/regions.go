package track

import (
	"fmt"

	"github.com/cyclopcam/thermal/pkg/frames"
	"github.com/cyclopcam/thermal/pkg/geom"
	"gonum.org/v1/gonum/stat"
)

// Region is one candidate foreground component in one frame: a padded,
// clipped bounding box plus the metrics the matcher and track filter need.
// A Region is immutable once the detector returns it; its box was clipped
// into the valid crop rectangle at creation time.
type Region struct {
	geom.Rect
	Mass          int     // Foreground pixel count, from the pre-dilation mask
	PixelVariance float64 // Variance of the inter-frame pixel delta inside the box
	FrameNumber   int
	ComponentID   int  // 1-based connected-component label within the frame
	WasCropped    bool // True if clipping against the crop rectangle altered the box
	Blank         bool // True for the placeholder a track appends on a missed frame
}

func (r Region) String() string {
	return fmt.Sprintf("region %v frame %v mass %v", r.Rect, r.FrameNumber, r.Mass)
}

// regionDetector turns a filtered frame into candidate regions.
// Stateless apart from configuration; the caller supplies the previous
// filtered frame for delta-based variance scoring.
type regionDetector struct {
	cfg      *Config
	cropRect geom.Rect // frame interior, excluding the edge margin
	padding  int       // effective padding after accounting for dilation
}

func newRegionDetector(cfg *Config, width, height int) *regionDetector {
	edge := cfg.EdgePixels
	// Padding below 3 causes problems with very small regions, and the
	// dilation already acts as padding.
	padding := max(0, max(3, cfg.FramePadding)-cfg.DilationPixels)
	return &regionDetector{
		cfg:      cfg,
		cropRect: geom.Rect{X: edge, Y: edge, Width: width - 2*edge, Height: height - 2*edge},
		padding:  padding,
	}
}

// componentStat accumulates the pre-dilation bounding box and mass of one
// labeled component.
type componentStat struct {
	minX, minY int
	maxX, maxY int
	mass       int
}

// detect extracts candidate regions from a filtered frame.
// prevFiltered may be nil (first frame of a clip), in which case pixel
// variance scoring is skipped. The returned mask is full frame size with
// background 0 and component labels 1..n.
func (d *regionDetector) detect(filtered, prevFiltered *frames.Image, threshold float64, frameNumber int) ([]Region, *frames.Mask) {
	var delta *frames.Image
	if prevFiltered != nil {
		delta = frames.AbsDiff(filtered, prevFiltered)
	}

	// The frame border carries spurious sensor values; detect on the
	// interior only.
	edgeless := filtered.Crop(d.cropRect)
	blurred := frames.GaussianBlur5(edgeless)
	thresh := frames.Threshold(blurred, threshold)

	// Dilation merges nearby fragments of one object into a single
	// component.
	dilated := thresh.Dilate(d.cfg.DilationPixels)
	smallMask, count := dilated.Label()

	mask := frames.NewMask(filtered.Width, filtered.Height)
	mask.Paste(smallMask, d.cropRect.X, d.cropRect.Y)

	if count == 0 {
		return nil, mask
	}

	// Bounding box and mass come from the pre-dilation mask. Every
	// pre-dilation foreground pixel carries a label in the dilated mask,
	// since dilation only grows the foreground.
	stats := make([]componentStat, count+1)
	for i := range stats {
		stats[i].minX = d.cropRect.Width
		stats[i].minY = d.cropRect.Height
		stats[i].maxX = -1
		stats[i].maxY = -1
	}
	for y := 0; y < thresh.Height; y++ {
		for x := 0; x < thresh.Width; x++ {
			if thresh.At(x, y) == 0 {
				continue
			}
			s := &stats[smallMask.At(x, y)]
			s.mass++
			s.minX = min(s.minX, x)
			s.minY = min(s.minY, y)
			s.maxX = max(s.maxX, x)
			s.maxY = max(s.maxY, y)
		}
	}

	regions := make([]Region, 0, count)
	for i := 1; i <= count; i++ {
		s := stats[i]
		if s.mass == 0 {
			// Component born entirely from dilation; nothing real under it.
			continue
		}
		region := Region{
			Rect: geom.Rect{
				X:      s.minX,
				Y:      s.minY,
				Width:  s.maxX - s.minX + 1,
				Height: s.maxY - s.minY + 1,
			},
			Mass:        s.mass,
			ComponentID: i,
			FrameNumber: frameNumber,
		}

		// Pad, translate from interior to full-frame coordinates, and clip
		// back into the crop rectangle.
		region.Offset(d.cropRect.X-d.padding, d.cropRect.Y-d.padding)
		region.Width += d.padding * 2
		region.Height += d.padding * 2
		old := region.Rect
		region.Clip(d.cropRect)
		region.WasCropped = region.Rect != old

		switch d.cfg.CroppedRegionsStrategy {
		case CroppedRegionsCautious:
			cropWidth := float64(old.Width-region.Width) / float64(old.Width)
			cropHeight := float64(old.Height-region.Height) / float64(old.Height)
			if cropWidth > 0.25 || cropHeight > 0.25 {
				continue
			}
		case CroppedRegionsNone:
			if region.WasCropped {
				continue
			}
		case CroppedRegionsAll:
		default:
			// Config.Validate rejects anything else before a run starts.
			panic(fmt.Sprintf("unknown cropped regions strategy '%v'", d.cfg.CroppedRegionsStrategy))
		}

		if delta != nil && region.Area() > 0 {
			sub := delta.Crop(region.Rect)
			mean := stat.Mean(sub.Pix, nil)
			region.PixelVariance = stat.MomentAbout(2, sub.Pix, mean, nil)
		}

		// Either enough mass or enough variance is sufficient evidence of
		// a real object; only reject when both signals are weak.
		if region.PixelVariance < d.cfg.AOIPixelVariance && region.Mass < d.cfg.AOIMinMass {
			continue
		}

		regions = append(regions, region)
	}

	return regions, mask
}

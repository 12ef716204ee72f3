package encoder

import (
	"fmt"

	"vidshrink/internal/model"
)

// Tier is one row of the quality table.
type Tier struct {
	Quality          model.Quality
	CRF              int
	Preset           string
	FrameSkip        int
	AudioBitrateKbps int
}

var tiers = []Tier{
	{Quality: model.QualityAggressive, CRF: 28, Preset: "veryfast", FrameSkip: 2, AudioBitrateKbps: 96},
	{Quality: model.QualityBalanced, CRF: 24, Preset: "fast", FrameSkip: 1, AudioBitrateKbps: 128},
	{Quality: model.QualityHigh, CRF: 20, Preset: "medium", FrameSkip: 0, AudioBitrateKbps: 160},
}

// fallbackTier applies to any unrecognized quality name.
var fallbackTier = Tier{Quality: "", CRF: 23, Preset: "fast", FrameSkip: 1, AudioBitrateKbps: 128}

const (
	minCRF = 0
	maxCRF = 51
)

// Tiers returns the quality table, fallback row last.
func Tiers() []Tier {
	out := make([]Tier, 0, len(tiers)+1)
	out = append(out, tiers...)
	return append(out, fallbackTier)
}

// TierFor returns the table row for q, or the fallback row.
func TierFor(q model.Quality) Tier {
	for _, t := range tiers {
		if t.Quality == q {
			return t
		}
	}
	return fallbackTier
}

// Resolve maps user selections to a concrete EncodeSpec. It is total: every
// input produces a valid spec.
func Resolve(sel model.Selection) model.EncodeSpec {
	t := TierFor(sel.Quality)

	crf := t.CRF
	if sel.CRF != nil {
		crf = clampCRF(*sel.CRF)
	}

	spec := model.EncodeSpec{
		CRF:              crf,
		Preset:           t.Preset,
		FrameSkip:        t.FrameSkip,
		AudioBitrateKbps: t.AudioBitrateKbps,
	}

	switch sel.Codec {
	case model.CodecH265:
		spec.Codec = model.CodecH265
		spec.Encoder = "libx265"
		spec.ExtraArgs = []string{"-x265-params", "log-level=error"}
	case model.CodecVP9:
		spec.Codec = model.CodecVP9
		spec.Encoder = "libvpx-vp9"
		spec.ExtraArgs = []string{"-quality", "good", "-cpu-used", "4"}
	default:
		spec.Codec = model.CodecH264
		spec.Encoder = "libx264"
	}

	spec.Scale, spec.ScaleFilter = resolveScale(sel)
	return spec
}

func resolveScale(sel model.Selection) (*model.Scale, string) {
	switch sel.Resolution {
	case model.Resolution1080p, model.Resolution720p, model.Resolution480p:
		h := namedHeights[sel.Resolution]
		return &model.Scale{Named: sel.Resolution}, fmt.Sprintf("scale=-2:%d:flags=lanczos", h)
	case model.ResolutionCustom:
		if sel.CustomWidth <= 0 || sel.CustomHeight <= 0 {
			return nil, ""
		}
		return &model.Scale{Width: sel.CustomWidth, Height: sel.CustomHeight},
			fmt.Sprintf("scale=%d:%d:flags=lanczos", sel.CustomWidth, sel.CustomHeight)
	default:
		return nil, ""
	}
}

var namedHeights = map[model.Resolution]int{
	model.Resolution1080p: 1080,
	model.Resolution720p:  720,
	model.Resolution480p:  480,
}

func clampCRF(v int) int {
	if v < minCRF {
		return minCRF
	}
	if v > maxCRF {
		return maxCRF
	}
	return v
}

package model

import "strings"

// ParseQuality normalizes a user-supplied tier name. Unrecognized names are
// returned lowercased so the resolver can apply its fallback row.
func ParseQuality(s string) Quality {
	switch norm(s) {
	case "aggressive", "smallest", "low":
		return QualityAggressive
	case "balanced", "medium":
		return QualityBalanced
	case "high", "best":
		return QualityHigh
	default:
		return Quality(norm(s))
	}
}

// ParseCodec normalizes a codec name. Unrecognized names are returned lowercased.
func ParseCodec(s string) Codec {
	switch norm(s) {
	case "h264", "h.264", "avc", "x264", "libx264":
		return CodecH264
	case "h265", "h.265", "hevc", "x265", "libx265":
		return CodecH265
	case "vp9", "libvpx-vp9":
		return CodecVP9
	default:
		return Codec(norm(s))
	}
}

// ParseResolution normalizes a resolution name. Unrecognized names are returned lowercased.
func ParseResolution(s string) Resolution {
	switch norm(s) {
	case "", "original", "source":
		return ResolutionOriginal
	case "1080p", "1080":
		return Resolution1080p
	case "720p", "720":
		return Resolution720p
	case "480p", "480":
		return Resolution480p
	case "custom":
		return ResolutionCustom
	default:
		return Resolution(norm(s))
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package model

// Quality represents a user-facing quality tier.
type Quality string

const (
	QualityAggressive Quality = "aggressive"
	QualityBalanced   Quality = "balanced"
	QualityHigh       Quality = "high"
)

// Codec represents the video codec choice.
type Codec string

const (
	CodecH264 Codec = "h264"
	CodecH265 Codec = "h265"
	CodecVP9  Codec = "vp9"
)

// Resolution represents the output resolution choice.
type Resolution string

const (
	ResolutionOriginal Resolution = "original"
	Resolution1080p    Resolution = "1080p"
	Resolution720p     Resolution = "720p"
	Resolution480p     Resolution = "480p"
	ResolutionCustom   Resolution = "custom"
)

// Selection holds the user's encode choices before resolution into an EncodeSpec.
type Selection struct {
	Quality      Quality
	Codec        Codec
	Resolution   Resolution
	CustomWidth  int  // used only with ResolutionCustom
	CustomHeight int  // used only with ResolutionCustom
	CRF          *int // explicit override; nil uses the tier default
}

// Scale describes an active resize. Exactly one of Named or (Width, Height) is set.
type Scale struct {
	Named  Resolution
	Width  int
	Height int
}

// EncodeSpec is the concrete, immutable encoder configuration for one job.
type EncodeSpec struct {
	Codec            Codec
	Encoder          string   // encoder id, e.g. "libx264"
	ExtraArgs        []string // codec-specific flags
	CRF              int      // 0..51
	Preset           string   // speed preset, e.g. "veryfast"
	FrameSkip        int      // output fps = source fps / (FrameSkip+1)
	AudioBitrateKbps int
	Scale            *Scale // nil means no resizing
	ScaleFilter      string // ffmpeg filter for Scale, empty when Scale is nil
}

// MediaInfo is the metadata extracted from the input by the probe.
type MediaInfo struct {
	DurationSec float64 // 0 means unknown
	Width       int
	Height      int
	FrameRate   float64
}

// Request carries everything the supervisor needs to run one job.
type Request struct {
	FFmpegPath string
	InputPath  string
	OutputPath string
	Selection  Selection
}

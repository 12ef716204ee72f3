package encoder

import (
	"fmt"
	"strconv"

	"vidshrink/internal/model"
)

// OutputFrameRate returns the target frame rate for a source rate and frame
// skip divisor. It never drops below 1 fps.
func OutputFrameRate(sourceFPS float64, frameSkip int) float64 {
	if frameSkip < 0 {
		frameSkip = 0
	}
	fps := sourceFPS / float64(frameSkip+1)
	if fps < 1.0 {
		return 1.0
	}
	return fps
}

// VideoFilter returns the -vf value: optional scale filter followed by fps.
func VideoFilter(spec model.EncodeSpec, sourceFPS float64) string {
	fps := "fps=" + strconv.FormatFloat(OutputFrameRate(sourceFPS, spec.FrameSkip), 'f', -1, 64)
	if spec.ScaleFilter == "" {
		return fps
	}
	return spec.ScaleFilter + "," + fps
}

// BuildArgs constructs the ffmpeg arguments (without the binary) for one encode.
func BuildArgs(spec model.EncodeSpec, info model.MediaInfo, inputPath, outputPath string) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", spec.Encoder,
		"-crf", strconv.Itoa(spec.CRF),
		"-preset", spec.Preset,
		"-movflags", "+faststart",
		"-vf", VideoFilter(spec, info.FrameRate),
	}
	args = append(args, spec.ExtraArgs...)
	args = append(args,
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", spec.AudioBitrateKbps),
		outputPath,
	)
	return args
}

// ProbeArgs constructs the inspection invocation for inputPath.
func ProbeArgs(inputPath string) []string {
	return []string{"-i", inputPath, "-hide_banner"}
}

package assets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alekLukanen/errs"
	wav "github.com/youpy/go-wav"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

// Target formats an audio asset may be stored as. Anything else is
// forced to the WAV fallback target.
var SupportedAudioExtensions = map[string]struct{}{
	".wav": {},
	".mp3": {},
}

/*
AudioSample is a decoded audio cell. When the decoder kept the encoded
source around, Encoded and EncodedPath carry it; otherwise the raw
samples and the sampling rate are re-encoded to WAV before persisting.
*/
type AudioSample struct {
	Samples     []float64
	SampleRate  int
	Encoded     []byte
	EncodedPath string
}

func (obj *Transformer) encodeAudio(
	ctx context.Context, rowIdx int64, value any, column string, path features.Path,
) (*storage.Asset, error) {
	if value == nil {
		return nil, nil
	}

	switch value.(type) {
	case map[string]any, *AudioSample:
	default:
		return nil, errs.NewStackError(fmt.Errorf(
			"%w| audio cell must be an encoded audio value or a decoded audio sample, got %T", ErrTypeMismatch, value,
		))
	}

	extension := audioFileExtension(value)
	data, err := audioFileBytes(value)
	if err != nil {
		return nil, err
	}
	if extension == "" {
		extension = inferAudioFileExtension(data)
	}

	// convert to wav if the audio file extension is not supported
	targetExtension := targetAudioExtension(extension)
	if extension != targetExtension {
		return nil, errs.NewStackError(fmt.Errorf(
			"%w| cannot convert %q to %q", ErrUnsupportedAudioFormat, extension, targetExtension,
		))
	}

	filename := features.AppendHashSuffix("audio", path) + targetExtension
	asset, err := obj.store.Put(ctx, obj.location, rowIdx, column, filename, data)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	return &asset, nil
}

func targetAudioExtension(extension string) string {
	if _, ok := SupportedAudioExtensions[extension]; ok {
		return extension
	}
	return ".wav"
}

// audioFileExtension reads the extension from the cell's path-like
// metadata. Chained URLs like "zip://a.wav::https://host/data.zip" are
// stripped to their inner path first. Returns "" when the cell carries
// no usable path.
func audioFileExtension(value any) string {
	switch typed := value.(type) {
	case map[string]any:
		if filePath, ok := typed["path"].(string); ok {
			return filepath.Ext(strings.SplitN(filePath, "::", 2)[0])
		}
		return ""
	case *AudioSample:
		if typed.EncodedPath != "" {
			return filepath.Ext(strings.SplitN(typed.EncodedPath, "::", 2)[0])
		}
		if typed.Encoded == nil {
			// raw samples are always re-encoded to wav
			return ".wav"
		}
		return ""
	default:
		return ""
	}
}

func audioFileBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case map[string]any:
		if data, ok := typed["bytes"].([]byte); ok && len(data) > 0 {
			return data, nil
		}
		if filePath, ok := typed["path"].(string); ok && fileExists(filePath) {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return nil, errs.Wrap(err)
			}
			return data, nil
		}
	case *AudioSample:
		if typed.Encoded != nil {
			return typed.Encoded, nil
		}
		if len(typed.Samples) > 0 && typed.SampleRate > 0 {
			return encodeWAVSamples(typed.Samples, typed.SampleRate)
		}
	}
	return nil, errs.NewStackError(fmt.Errorf(
		"%w| audio cell must carry encoded bytes, an existing file path or raw samples", ErrTypeMismatch,
	))
}

// encodeWAVSamples writes mono float samples in [-1, 1] as a 16 bit
// PCM WAV byte buffer.
func encodeWAVSamples(samples []float64, sampleRate int) ([]byte, error) {
	wavSamples := make([]wav.Sample, len(samples))
	for i, sample := range samples {
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		value := int(sample * 32767)
		wavSamples[i].Values[0] = value
		wavSamples[i].Values[1] = value
	}

	var buf bytes.Buffer
	writer := wav.NewWriter(&buf, uint32(len(wavSamples)), 1, uint32(sampleRate), 16)
	if err := writer.WriteSamples(wavSamples); err != nil {
		return nil, errs.Wrap(err)
	}
	return buf.Bytes(), nil
}

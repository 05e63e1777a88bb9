package assets

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowvault/rowvault/features"
	"github.com/rowvault/rowvault/storage"
)

func wavHeaderBytes() []byte {
	data := make([]byte, 16)
	copy(data[0:], "RIFF")
	copy(data[8:], "WAVE")
	return data
}

func TestInferAudioFileExtension(t *testing.T) {
	assert.Equal(t, ".wav", inferAudioFileExtension(wavHeaderBytes()))
	assert.Equal(t, ".mp3", inferAudioFileExtension([]byte{0xff, 0xfb, 0x00, 0x00}))
	assert.Equal(t, ".mp3", inferAudioFileExtension([]byte{0xff, 0xf3, 0x00}))
	assert.Equal(t, ".mp3", inferAudioFileExtension([]byte{0xff, 0xf2, 0x00}))
	assert.Equal(t, ".mp3", inferAudioFileExtension([]byte("ID3trailing")))
	assert.Equal(t, "", inferAudioFileExtension([]byte("not audio at all")))
	// RIFF prefix alone is not enough for wav
	assert.Equal(t, "", inferAudioFileExtension([]byte("RIFF1234AVI ")))
}

func TestTargetAudioExtension(t *testing.T) {
	assert.Equal(t, ".wav", targetAudioExtension(".wav"))
	assert.Equal(t, ".mp3", targetAudioExtension(".mp3"))
	assert.Equal(t, ".wav", targetAudioExtension(".flac"))
	assert.Equal(t, ".wav", targetAudioExtension(""))
}

func TestAudioFileExtension_ChainedURL(t *testing.T) {
	cell := map[string]any{"path": "zip://audio.mp3::https://host/data.zip"}
	assert.Equal(t, ".mp3", audioFileExtension(cell))
}

func TestAudioFileExtension_NoPath(t *testing.T) {
	assert.Equal(t, "", audioFileExtension(map[string]any{"bytes": []byte{1, 2}}))
	assert.Equal(t, "", audioFileExtension(map[string]any{"path": nil}))
}

func TestAudioFileExtension_DecodedSample(t *testing.T) {
	withPath := &AudioSample{Encoded: []byte{1}, EncodedPath: "clips/a.mp3"}
	assert.Equal(t, ".mp3", audioFileExtension(withPath))

	rawSamples := &AudioSample{Samples: []float64{0.1}, SampleRate: 16000}
	assert.Equal(t, ".wav", audioFileExtension(rawSamples))
}

func TestEncodeWAVSamples_ProducesWAVMagic(t *testing.T) {
	data, err := encodeWAVSamples([]float64{0, 0.5, -0.5, 1}, 16000)

	require.Nil(t, err)
	assert.Equal(t, ".wav", inferAudioFileExtension(data))
}

func TestEncodeAudio_EncodedBytesCell(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	cell := map[string]any{"bytes": wavHeaderBytes(), "path": "train/clip.wav"}
	value, err := transformer.GetCellValue(ctx, 3, cell, "speech", features.Audio{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".wav"))

	calls := store.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "audio.wav", calls[0].filename)
	assert.Equal(t, wavHeaderBytes(), calls[0].data)
}

func TestEncodeAudio_SniffedExtension(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	// no path metadata, extension comes from the magic numbers
	cell := map[string]any{"bytes": append([]byte{0xff, 0xfb}, make([]byte, 32)...)}
	value, err := transformer.GetCellValue(ctx, 0, cell, "speech", features.Audio{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".mp3"))
}

func TestEncodeAudio_PathCell(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	filePath := t.TempDir() + "/clip.wav"
	require.Nil(t, os.WriteFile(filePath, wavHeaderBytes(), 0o644))

	value, err := transformer.GetCellValue(ctx, 0, map[string]any{"path": filePath}, "speech", features.Audio{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".wav"))
}

func TestEncodeAudio_DecodedSamples(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	cell := &AudioSample{Samples: []float64{0, 0.25, -0.25}, SampleRate: 8000}
	value, err := transformer.GetCellValue(ctx, 0, cell, "speech", features.Audio{}, nil)

	require.Nil(t, err)
	asset := value.(*storage.Asset)
	assert.True(t, strings.HasSuffix(asset.Src, ".wav"))

	calls := store.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, ".wav", inferAudioFileExtension(calls[0].data))
}

func TestEncodeAudio_UnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	cell := map[string]any{"bytes": []byte("fLaC...."), "path": "clip.flac"}
	_, err := transformer.GetCellValue(ctx, 0, cell, "speech", features.Audio{}, nil)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedAudioFormat))
}

func TestEncodeAudio_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	store := &fakeAssetStore{}
	transformer := NewTransformer(testLogger(), store, testLocation(), TransformerOptions{})

	_, err := transformer.GetCellValue(ctx, 0, "not audio", "speech", features.Audio{}, nil)

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

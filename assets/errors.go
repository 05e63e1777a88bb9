package assets

import "errors"

var (
	ErrTypeMismatch           = errors.New("cell does not match the feature type")
	ErrArityMismatch          = errors.New("cell length different than the fixed list length")
	ErrUnknownFeatureType     = errors.New("unknown feature type")
	ErrEncodingExhausted      = errors.New("image could not be encoded in any configured format")
	ErrMissingExtension       = errors.New("video file extension could not be determined")
	ErrUnsupportedAudioFormat = errors.New("audio format requires transcoding")
)

package assets

import "bytes"

type magicNumber struct {
	prefix []byte
	offset int
}

// Signatures checked against the head of an audio byte buffer when the
// cell carries no usable path. Entries under "all" must every one
// match at their offset; entries under "anyOf" match on any prefix.
var audioMagicNumbers = []struct {
	extension string
	all       []magicNumber
	anyOf     [][]byte
}{
	{
		extension: ".wav",
		all: []magicNumber{
			{prefix: []byte("RIFF"), offset: 0},
			{prefix: []byte("WAVE"), offset: 8},
		},
	},
	{
		extension: ".mp3",
		anyOf: [][]byte{
			{0xff, 0xfb},
			{0xff, 0xf3},
			{0xff, 0xf2},
			{0x49, 0x44, 0x33},
		},
	},
}

// inferAudioFileExtension sniffs the buffer against the magic number
// table. Returns "" when no signature matches.
func inferAudioFileExtension(data []byte) string {
	for _, entry := range audioMagicNumbers {
		if len(entry.all) > 0 {
			matched := true
			for _, magic := range entry.all {
				if !matchesAtOffset(data, magic.prefix, magic.offset) {
					matched = false
					break
				}
			}
			if matched {
				return entry.extension
			}
		}
		for _, prefix := range entry.anyOf {
			if bytes.HasPrefix(data, prefix) {
				return entry.extension
			}
		}
	}
	return ""
}

func matchesAtOffset(data, prefix []byte, offset int) bool {
	if len(data) < offset+len(prefix) {
		return false
	}
	return bytes.Equal(data[offset:offset+len(prefix)], prefix)
}

package features

import (
	"github.com/apache/arrow/go/v17/arrow"
)

// Arrow schemas cannot express media types directly, so media-bearing
// fields are tagged with this metadata key. The value names the media
// kind: "image", "audio", "video" or "document".
const MediaMetadataKey = "media"

const (
	MediaKindImage    = "image"
	MediaKindAudio    = "audio"
	MediaKindVideo    = "video"
	MediaKindDocument = "document"
)

// FromArrowSchema derives a Features schema from an Arrow schema.
// Fields tagged with the media metadata key become media types, list
// and struct types become the matching containers, and everything else
// becomes a scalar passthrough carrying its Arrow dtype.
func FromArrowSchema(schema *arrow.Schema) Features {
	feats := make(Features, 0, schema.NumFields())
	for _, field := range schema.Fields() {
		feats = append(feats, Column{Name: field.Name, Type: fromArrowField(field)})
	}
	return feats
}

func fromArrowField(field arrow.Field) FeatureType {
	if kind, ok := field.Metadata.GetValue(MediaMetadataKey); ok {
		switch kind {
		case MediaKindImage:
			return Image{}
		case MediaKindAudio:
			return Audio{}
		case MediaKindVideo:
			return Video{}
		case MediaKindDocument:
			return Document{}
		}
	}

	switch typed := field.Type.(type) {
	case *arrow.ListType:
		return NewList(fromArrowField(typed.ElemField()))
	case *arrow.LargeListType:
		return LargeList{Element: fromArrowField(typed.ElemField())}
	case *arrow.FixedSizeListType:
		return NewFixedList(fromArrowField(typed.ElemField()), int(typed.Len()))
	case *arrow.StructType:
		fields := make([]Field, typed.NumFields())
		for i := 0; i < typed.NumFields(); i++ {
			structField := typed.Field(i)
			fields[i] = Field{Name: structField.Name, Type: fromArrowField(structField)}
		}
		return Struct{Fields: fields}
	default:
		return Scalar{Dtype: field.Type}
	}
}

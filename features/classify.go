package features

import (
	"github.com/apache/arrow/go/v17/arrow"
)

// Classify partitions the schema's columns into supported and
// unsupported sets. A column is unsupported if any node in its type
// tree matches one of the disallowed types. Scalar entries only match
// when the concrete dtype is equal as well, so disallowing
// Scalar{int32} does not disallow every scalar column.
func Classify(feats Features, disallowedTypes []FeatureType) (supported []string, unsupported []string) {
	supported = make([]string, 0, len(feats))
	unsupported = make([]string, 0)

	for _, column := range feats {
		columnSupported := true
		Visit(column.Type, func(node FeatureType) {
			for _, disallowed := range disallowedTypes {
				if matchesFeatureType(node, disallowed) {
					columnSupported = false
				}
			}
		})
		if columnSupported {
			supported = append(supported, column.Name)
		} else {
			unsupported = append(unsupported, column.Name)
		}
	}
	return supported, unsupported
}

func matchesFeatureType(node, disallowed FeatureType) bool {
	switch typedNode := node.(type) {
	case Scalar:
		typedDisallowed, ok := disallowed.(Scalar)
		if !ok {
			return false
		}
		if typedNode.Dtype == nil || typedDisallowed.Dtype == nil {
			return typedNode.Dtype == nil && typedDisallowed.Dtype == nil
		}
		return arrow.TypeEqual(typedNode.Dtype, typedDisallowed.Dtype)
	case Image:
		_, ok := disallowed.(Image)
		return ok
	case Audio:
		_, ok := disallowed.(Audio)
		return ok
	case Video:
		_, ok := disallowed.(Video)
		return ok
	case Document:
		_, ok := disallowed.(Document)
		return ok
	case List:
		_, ok := disallowed.(List)
		return ok
	case LargeList:
		_, ok := disallowed.(LargeList)
		return ok
	case Struct:
		_, ok := disallowed.(Struct)
		return ok
	default:
		return false
	}
}

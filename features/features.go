package features

import (
	"github.com/apache/arrow/go/v17/arrow"
)

/*
A FeatureType describes the declared type of one column or one nested
element of a column. The set of variants is closed: scalar passthrough
types, the four media types, the two list containers and the struct
container. Media cells are the only cells that get materialized into
stored assets; everything else passes through the transformer untouched.
*/
type FeatureType interface {
	isFeatureType()
}

// Scalar is an opaque passthrough type: numbers, strings, categorical
// labels, translations and fixed-shape arrays. The Arrow data type is
// retained so columns can be filtered on their concrete dtype.
type Scalar struct {
	Dtype arrow.DataType
}

type Image struct{}

type Audio struct{}

type Video struct{}

type Document struct{}

// List is a variable or fixed length sequence of elements of a single
// type. A negative Length leaves the arity unconstrained.
type List struct {
	Element FeatureType
	Length  int
}

type LargeList struct {
	Element FeatureType
}

type Field struct {
	Name string
	Type FeatureType
}

// Struct is a keyed mapping of named fields, each with its own type.
type Struct struct {
	Fields []Field
}

func (Scalar) isFeatureType()    {}
func (Image) isFeatureType()     {}
func (Audio) isFeatureType()     {}
func (Video) isFeatureType()     {}
func (Document) isFeatureType()  {}
func (List) isFeatureType()      {}
func (LargeList) isFeatureType() {}
func (Struct) isFeatureType()    {}

func NewList(element FeatureType) List {
	return List{Element: element, Length: -1}
}

func NewFixedList(element FeatureType, length int) List {
	return List{Element: element, Length: length}
}

func (obj Struct) Field(name string) (FeatureType, bool) {
	for _, field := range obj.Fields {
		if field.Name == name {
			return field.Type, true
		}
	}
	return nil, false
}

type Column struct {
	Name string
	Type FeatureType
}

// Features is the ordered schema of a dataset split: one typed column
// per entry, in the order the dataset declares them.
type Features []Column

func (obj Features) Get(name string) (FeatureType, bool) {
	for _, column := range obj {
		if column.Name == name {
			return column.Type, true
		}
	}
	return nil, false
}

func (obj Features) ColumnNames() []string {
	names := make([]string, len(obj))
	for i, column := range obj {
		names[i] = column.Name
	}
	return names
}

type FeatureItem struct {
	FeatureIdx int
	Name       string
	Type       FeatureType
}

// Items returns the schema as an ordered list, since a plain mapping
// would not carry column order across a JSON boundary.
func (obj Features) Items() []FeatureItem {
	items := make([]FeatureItem, len(obj))
	for i, column := range obj {
		items[i] = FeatureItem{FeatureIdx: i, Name: column.Name, Type: column.Type}
	}
	return items
}

// Visit calls fn for the given node and then for every node nested
// below it, container elements and struct fields included.
func Visit(featureType FeatureType, fn func(FeatureType)) {
	fn(featureType)
	switch typed := featureType.(type) {
	case List:
		Visit(typed.Element, fn)
	case LargeList:
		Visit(typed.Element, fn)
	case Struct:
		for _, field := range typed.Fields {
			Visit(field.Type, fn)
		}
	}
}

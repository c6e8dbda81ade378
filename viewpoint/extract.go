// Package viewpoint derives camera intent from viewpoint documents.
//
// Real-world viewpoint files disagree about shape: some dialects nest
// X/Y/Z child elements, some put the components in attributes, some
// inline the numbers as text. The extractor runs a fixed cascade of
// shapes and takes the first that fits, so one parser covers them all.
// Extraction never fails; a value that cannot be found in any shape is
// simply absent.
package viewpoint

import (
	"regexp"
	"strconv"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/xmltree"
)

// numberPattern recognizes one floating-point token: optional sign,
// decimals, optional exponent.
var numberPattern = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`)

// vectorStrategy tries one document shape. It reports false when the
// shape does not apply; strategies never return errors.
type vectorStrategy func(*xmltree.Node) (geom.Vec3, bool)

// vectorStrategies is the cascade, most structured shape first. Order
// matters: a node carrying X/Y/Z children must not fall through to the
// text scan of a sibling dialect.
var vectorStrategies = []vectorStrategy{
	vectorFromChildElements,
	vectorFromAttributes,
	vectorFromDirectText,
	vectorFromDeepText,
}

// Vector extracts a 3-component vector from n, trying each known
// document shape in order. It reports false when no shape applies,
// including for a nil node.
func Vector(n *xmltree.Node) (geom.Vec3, bool) {
	if n == nil {
		return geom.Vec3{}, false
	}
	for _, strategy := range vectorStrategies {
		if v, ok := strategy(n); ok {
			return v, true
		}
	}
	return geom.Vec3{}, false
}

// Scalar extracts a numeric scalar from n: the node's own text first,
// then the first attribute value that parses. Reports false when
// neither yields a number.
func Scalar(n *xmltree.Node) (float64, bool) {
	if n == nil {
		return 0, false
	}
	if v, err := strconv.ParseFloat(n.DirectText(), 64); err == nil {
		return v, true
	}
	for _, a := range n.Attrs {
		if v, err := strconv.ParseFloat(a.Value, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func vectorFromChildElements(n *xmltree.Node) (geom.Vec3, bool) {
	x, okX := childFloat(n, "X")
	y, okY := childFloat(n, "Y")
	z, okZ := childFloat(n, "Z")
	if !okX || !okY || !okZ {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: x, Y: y, Z: z}, true
}

func childFloat(n *xmltree.Node, name string) (float64, bool) {
	children := n.ChildrenNamed(name)
	if len(children) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(children[0].DirectText(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func vectorFromAttributes(n *xmltree.Node) (geom.Vec3, bool) {
	x, okX := attrFloat(n, "x")
	y, okY := attrFloat(n, "y")
	z, okZ := attrFloat(n, "z")
	if !okX || !okY || !okZ {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: x, Y: y, Z: z}, true
}

func attrFloat(n *xmltree.Node, name string) (float64, bool) {
	raw, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func vectorFromDirectText(n *xmltree.Node) (geom.Vec3, bool) {
	return vectorFromTokens(n.DirectText())
}

func vectorFromDeepText(n *xmltree.Node) (geom.Vec3, bool) {
	return vectorFromTokens(n.DeepText())
}

// vectorFromTokens scans text for numeric tokens and takes the first
// three. Fewer than three tokens is a miss, not an error.
func vectorFromTokens(text string) (geom.Vec3, bool) {
	tokens := numberPattern.FindAllString(text, 3)
	if len(tokens) < 3 {
		return geom.Vec3{}, false
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return geom.Vec3{}, false
		}
		out[i] = v
	}
	return geom.Vec3{X: out[0], Y: out[1], Z: out[2]}, true
}

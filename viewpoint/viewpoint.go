package viewpoint

import (
	"strings"

	"github.com/glasswing-io/sightline/types"
	"github.com/glasswing-io/sightline/xmltree"
)

// Camera element names across the dialects this parser has met.
const (
	perspectiveElement = "PerspectiveCamera"
	orthogonalElement  = "OrthogonalCamera"
)

// identifierAttrs are the component identifier spellings seen in the
// wild, tried in order before one case-insensitive sweep.
var identifierAttrs = []string{"IfcGuid", "ifcGuid", "IfcGUID"}

// Parse derives the camera intent from one viewpoint document. A nil
// or camera-less document yields CameraNone with all fields absent.
// Camera extraction and entity-reference extraction are independent:
// a broken selection block never disturbs the camera fields, and a
// missing camera never hides the selection.
func Parse(doc *xmltree.Node) types.ParsedViewpoint {
	out := types.ParsedViewpoint{Camera: types.CameraNone}
	if doc == nil {
		return out
	}

	cam := doc.FirstAny(perspectiveElement, orthogonalElement)
	if cam != nil {
		if strings.EqualFold(cam.Name, perspectiveElement) {
			out.Camera = types.CameraPerspective
		} else {
			out.Camera = types.CameraOrthographic
		}
		if v, ok := Vector(cam.First("CameraViewPoint")); ok {
			out.Eye = &v
		}
		if v, ok := Vector(cam.First("CameraDirection")); ok {
			out.ViewDirection = &v
		}
		if v, ok := Vector(cam.First("CameraUpVector")); ok {
			out.Up = &v
		}
		if s, ok := Scalar(cam.First("FieldOfView")); ok {
			out.FieldOfView = &s
		}
	}

	if ref, ok := selectionRef(doc); ok {
		out.EntityRef = &ref
	}
	return out
}

// selectionRef finds the identifier of the selected component. Among
// the direct Component children of the first Selection element, a
// component whose Selected attribute equals "true" (any case) wins
// over plain document order.
func selectionRef(doc *xmltree.Node) (string, bool) {
	components := doc.First("Selection").ChildrenNamed("Component")
	if len(components) == 0 {
		return "", false
	}

	pick := components[0]
	for _, c := range components {
		if v, ok := c.Attr("Selected"); ok && strings.EqualFold(v, "true") {
			pick = c
			break
		}
	}

	for _, name := range identifierAttrs {
		if v, ok := pick.AttrExact(name); ok && v != "" {
			return v, true
		}
	}
	if v, ok := pick.Attr("ifcguid"); ok && v != "" {
		return v, true
	}
	return "", false
}

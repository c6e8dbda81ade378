package viewpoint

import (
	"strings"
	"testing"

	"github.com/glasswing-io/sightline/geom"
	"github.com/glasswing-io/sightline/xmltree"
)

func parseDoc(t *testing.T, doc string) *xmltree.Node {
	t.Helper()
	n, err := xmltree.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("xmltree.Parse() error = %v", err)
	}
	return n
}

func TestVector_ShapeInvariance(t *testing.T) {
	want := geom.Vec3{X: 1, Y: 2, Z: 3}

	// The same point in every dialect shape the cascade knows.
	tests := []struct {
		name string
		doc  string
	}{
		{"child elements", `<P><X>1</X><Y>2</Y><Z>3</Z></P>`},
		{"child elements lowercase", `<P><x>1</x><y>2</y><z>3</z></P>`},
		{"attributes", `<P x="1" y="2" z="3"/>`},
		{"attributes uppercase", `<P X="1" Y="2" Z="3"/>`},
		{"direct text", `<P>1 2 3</P>`},
		{"direct text commas", `<P>1, 2, 3</P>`},
		{"descendant text", `<P><Point>1,2,3</Point></P>`},
		{"descendant split", `<P><A>1</A><B>2 3</B></P>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := parseDoc(t, tt.doc).Children[0]
			got, ok := Vector(n)
			if !ok {
				t.Fatal("Vector() reported absent")
			}
			if !got.AlmostEqual(want, 1e-9) {
				t.Errorf("Vector() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestVector_Absent(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty element", `<P/>`},
		{"two tokens only", `<P>1 2</P>`},
		{"two attrs only", `<P x="1" y="2"/>`},
		{"missing child z", `<P><X>1</X><Y>2</Y></P>`},
		{"non-numeric text", `<P>north by northwest</P>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := parseDoc(t, tt.doc).Children[0]
			if _, ok := Vector(n); ok {
				t.Error("Vector() reported present")
			}
		})
	}

	t.Run("nil node", func(t *testing.T) {
		if _, ok := Vector(nil); ok {
			t.Error("Vector(nil) reported present")
		}
	})
}

func TestVector_StrategyOrder(t *testing.T) {
	// Child elements outrank attributes, attributes outrank text.
	doc := `<P x="9" y="9" z="9"><X>1</X><Y>2</Y><Z>3</Z></P>`
	n := parseDoc(t, doc).Children[0]
	got, ok := Vector(n)
	if !ok {
		t.Fatal("Vector() reported absent")
	}
	if !got.AlmostEqual(geom.Vec3{X: 1, Y: 2, Z: 3}, 1e-9) {
		t.Errorf("Vector() = %+v, child elements should win over attributes", got)
	}
}

func TestVector_ScientificNotation(t *testing.T) {
	n := parseDoc(t, `<P>1e2 -2.5e-1 +3.0</P>`).Children[0]
	got, ok := Vector(n)
	if !ok {
		t.Fatal("Vector() reported absent")
	}
	want := geom.Vec3{X: 100, Y: -0.25, Z: 3}
	if !got.AlmostEqual(want, 1e-9) {
		t.Errorf("Vector() = %+v, want %+v", got, want)
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   float64
		wantOK bool
	}{
		{"own text", `<FieldOfView>60</FieldOfView>`, 60, true},
		{"own text float", `<FieldOfView> 1.047 </FieldOfView>`, 1.047, true},
		{"attribute fallback", `<FieldOfView Value="45"/>`, 45, true},
		{"first parsable attribute", `<FieldOfView unit="deg" Value="45"/>`, 45, true},
		{"empty", `<FieldOfView/>`, 0, false},
		{"garbage", `<FieldOfView>wide</FieldOfView>`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := parseDoc(t, tt.doc).Children[0]
			got, ok := Scalar(n)
			if ok != tt.wantOK {
				t.Fatalf("Scalar() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Scalar() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil node", func(t *testing.T) {
		if _, ok := Scalar(nil); ok {
			t.Error("Scalar(nil) reported present")
		}
	})
}

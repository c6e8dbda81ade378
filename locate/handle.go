// Package locate turns an entity reference from a viewpoint into a
// framed, selected entity in the host view. The sequence is strict:
// parse the reference locally, then resolve, measure, frame, and
// select inside one document lock. A reference that does not even
// parse never costs a host call.
package locate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/glasswing-io/sightline/host"
)

// ErrInvalidHandleFormat is returned when an entity reference parses
// as neither hexadecimal nor decimal.
var ErrInvalidHandleFormat = errors.New("entity reference is neither hexadecimal nor decimal")

// ParseHandle interprets an entity reference as a numeric handle,
// hexadecimal first, then decimal. Hosts hand out hex handle strings,
// so "291" reads as 0x291; the decimal pass only catches values too
// wide for a hex reading. No host call is ever made here.
func ParseHandle(ref string) (host.Handle, error) {
	s := strings.TrimSpace(ref)
	if s == "" {
		return 0, fmt.Errorf("%w: empty reference", ErrInvalidHandleFormat)
	}
	if v, err := strconv.ParseUint(s, 16, 64); err == nil {
		return host.Handle(v), nil
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return host.Handle(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidHandleFormat, ref)
}

// FormatHandle renders a handle the way hosts print them: uppercase
// hex, no prefix.
func FormatHandle(h host.Handle) string {
	return strings.ToUpper(strconv.FormatUint(uint64(h), 16))
}

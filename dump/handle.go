package dump

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// handlePattern matches the full token: an 0x-prefixed hex address,
// optional spaces, then a bracketed name (which may be empty).
var handlePattern = regexp.MustCompile(`^(0x[0-9a-fA-F]+) *\[(.*)\]$`)

// ParseHandle parses a handle token such as "0x7f3a2c10 [VkInstance]".
func ParseHandle(raw string) (Handle, error) {
	m := handlePattern.FindStringSubmatch(raw)
	if m == nil {
		return Handle{}, fmt.Errorf("bad handle value %q: %w", raw, ErrMalformedHandle)
	}
	value, err := strconv.ParseUint(m[1], 0, 64)
	if err != nil {
		return Handle{}, fmt.Errorf("bad handle value %q: %w", raw, ErrMalformedHandle)
	}
	return Handle{Value: value, Name: m[2]}, nil
}

func parseHandleNode(h *Handle, n *yaml.Node, entity, key string) error {
	raw, err := scalarString(n, entity, key)
	if err != nil {
		return err
	}
	parsed, err := ParseHandle(raw)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", entity, key, err)
	}
	*h = parsed
	return nil
}

package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HexID is a USB vendor or product identifier. Config files usually write
// these the way lsusb prints them ("0x04b8"), but plain decimal integers
// are accepted too.
type HexID uint16

// UnmarshalYAML accepts "0x"-prefixed hex strings or bare decimal integers.
func (h *HexID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("usb id must be a scalar, got %v", node.Kind)
	}

	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		return fmt.Errorf("usb id is empty")
	}

	base := 10
	if strings.HasPrefix(strings.ToLower(raw), "0x") {
		raw = raw[2:]
		base = 16
	}

	v, err := strconv.ParseUint(raw, base, 16)
	if err != nil {
		return fmt.Errorf("invalid usb id %q: %w", raw, err)
	}

	*h = HexID(v)
	return nil
}

func (h HexID) String() string {
	return fmt.Sprintf("0x%04x", uint16(h))
}

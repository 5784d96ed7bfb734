package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"bistro/internal/errors"
	"bistro/internal/service"
)

type rawOrderItem struct {
	MenuItemID json.RawMessage `json:"menuItemId"`
	Quantity   json.RawMessage `json:"quantity"`
}

// NormalizeOrderItems accepts either a JSON array of {menuItemId, quantity}
// or an object keyed by numeric indexes, which some clients send after form
// serialization. Object entries are ordered by numeric key. menuItemId may be
// a number or a numeric string. A missing or unparseable quantity counts as
// 1 and every quantity is clamped into the allowed range.
func NormalizeOrderItems(raw json.RawMessage) ([]service.OrderLine, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "User ID and items are required")
	}

	var entries []rawOrderItem
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "items must be a list of {menuItemId, quantity}")
		}
	case '{':
		var keyed map[string]rawOrderItem
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "items must be a list of {menuItemId, quantity}")
		}
		type indexed struct {
			key   string
			index uint64
		}
		keys := make([]indexed, 0, len(keyed))
		for k := range keyed {
			n, err := strconv.ParseUint(k, 10, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrInvalidRequest, "items object keys must be numeric indexes")
			}
			keys = append(keys, indexed{key: k, index: n})
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].index != keys[j].index {
				return keys[i].index < keys[j].index
			}
			return keys[i].key < keys[j].key
		})
		for _, k := range keys {
			entries = append(entries, keyed[k.key])
		}
	default:
		return nil, errors.Wrap(errors.ErrInvalidRequest, "items must be a list of {menuItemId, quantity}")
	}

	if len(entries) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "User ID and items are required")
	}

	lines := make([]service.OrderLine, 0, len(entries))
	for i, e := range entries {
		id, ok := parsePositiveInt(e.MenuItemID)
		if !ok {
			return nil, errors.Wrap(errors.ErrInvalidRequest, "items[%d].menuItemId must be a positive integer", i)
		}
		qty, ok := parsePositiveInt(e.Quantity)
		if !ok {
			qty = 1
		}
		if qty > math.MaxInt32 {
			qty = math.MaxInt32
		}
		lines = append(lines, service.OrderLine{
			MenuItemID: uint(id),
			Quantity:   service.ClampQuantity(int(qty)),
		})
	}
	return lines, nil
}

// parseID reads an optional numeric or numeric-string ID. Absent and null
// values return nil.
func parseID(raw json.RawMessage) (*uint, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return nil, nil
	}
	n, ok := parsePositiveInt(raw)
	if !ok {
		return nil, errors.ErrInvalidRequest
	}
	id := uint(n)
	return &id, nil
}

// parsePositiveInt reads a JSON number or numeric string holding an integer >= 1.
func parsePositiveInt(raw json.RawMessage) (uint64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n, n >= 1
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint64(f), true
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ImageList is the ordered list of image URLs attached to a mission.
//
// Older clients send the list as a JSON-encoded string ("[\"/uploads/a.png\"]") instead of
// an array; both forms decode to the same list. null and "" decode to an empty list.
type ImageList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *ImageList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return err
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" || encoded == "null" {
			*l = nil
			return nil
		}
		data = []byte(encoded)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return fmt.Errorf("images must be an array of URLs: %w", err)
	}
	*l = ImageList(urls).Clean()
	return nil
}

// MarshalJSON always encodes an array, never null
func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Clean drops empty entries
func (l ImageList) Clean() ImageList {
	out := make(ImageList, 0, len(l))
	for _, u := range l {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

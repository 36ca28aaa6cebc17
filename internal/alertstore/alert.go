package alertstore

import "encoding/json"

// Alert is one read-only security alert record. Alerts are loaded from
// the backing collection and passed downstream by value; nothing in
// this system creates or mutates them.
type Alert struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Severity  string `json:"severity"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`

	// Extra holds source-varying fields (user, src_ip, host, device,
	// and so on) that are not part of the common schema.
	Extra map[string]any `json:"-"`
}

// commonKeys are the fields lifted out of the raw record; everything
// else lands in Extra.
var commonKeys = map[string]bool{
	"id":        true,
	"source":    true,
	"severity":  true,
	"category":  true,
	"timestamp": true,
}

// UnmarshalJSON splits a raw alert record into the common schema
// fields and the source-specific extras.
func (a *Alert) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	a.ID = str("id")
	a.Source = str("source")
	a.Severity = str("severity")
	a.Category = str("category")
	a.Timestamp = str("timestamp")

	for k, v := range raw {
		if commonKeys[k] {
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[k] = v
	}
	return nil
}

// MarshalJSON flattens the common fields and extras back into a single
// record, so round-tripped alerts keep the original wire shape.
func (a Alert) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+5)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["id"] = a.ID
	out["source"] = a.Source
	out["severity"] = a.Severity
	out["category"] = a.Category
	out["timestamp"] = a.Timestamp
	return json.Marshal(out)
}

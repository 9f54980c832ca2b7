package revenuecat

import (
	"encoding/json"
	"strconv"
)

// Object is a decoded JSON object as returned by RevenueCat.
type Object map[string]any

// Items returns the objects in a list response's items array.
func (o Object) Items() []Object {
	raw, ok := o["items"].([]any)
	if !ok {
		return []Object{}
	}

	items := make([]Object, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]any:
			items = append(items, v)
		case Object:
			items = append(items, v)
		}
	}

	return items
}

// NextPage returns the next_page path of a list response, or "" on the last page.
func (o Object) NextPage() string {
	return o.String("next_page")
}

func (o Object) String(key string) string {
	s, _ := scalarString(o[key])
	return s
}

// Bool is true only when key holds the JSON boolean true.
func (o Object) Bool(key string) bool {
	b, ok := o[key].(bool)
	return ok && b
}

// Decode converts the object into v through its JSON representation.
func (o Object) Decode(v any) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func scalarString(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case json.Number:
		return value.String(), true
	case int:
		return strconv.Itoa(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	default:
		return "", false
	}
}

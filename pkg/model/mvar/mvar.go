package mvar

import "strings"

// KeyValue is the backend's row shape for every key/value list on a step:
// headers, path params, form data, urlencoded pairs and the three variable
// pools all store [{key, value, desc}].
type KeyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Desc  string `json:"desc,omitempty"`
}

func (kv KeyValue) BlankKey() bool {
	return strings.TrimSpace(kv.Key) == ""
}

func (kv KeyValue) BlankValue() bool {
	s, ok := kv.Value.(string)
	if kv.Value == nil {
		return true
	}
	return ok && strings.TrimSpace(s) == ""
}

// FilterBlankKeys drops rows whose key is blank after trimming. This is the
// one normalization applied to every key/value list before it leaves the
// client; rows with a blank key but a real value are a validation error and
// must be caught before this runs.
func FilterBlankKeys(list []KeyValue) []KeyValue {
	if list == nil {
		return nil
	}
	out := make([]KeyValue, 0, len(list))
	for _, kv := range list {
		if kv.BlankKey() {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func CloneList(list []KeyValue) []KeyValue {
	if list == nil {
		return nil
	}
	out := make([]KeyValue, len(list))
	copy(out, list)
	return out
}

// Keys returns the key of every row, in order, skipping blank keys.
func Keys(list []KeyValue) []string {
	out := make([]string, 0, len(list))
	for _, kv := range list {
		if kv.BlankKey() {
			continue
		}
		out = append(out, strings.TrimSpace(kv.Key))
	}
	return out
}

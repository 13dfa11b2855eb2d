package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// isJSONMediaType accepts application/json and application/*+json.
func isJSONMediaType(mt string) bool {
	if mt == contentTypeJSON {
		return true
	}
	return strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+json")
}

// decodeBody turns a request body into the raw submission map. Bodies of
// any other media type decode to an empty submission.
func decodeBody(contentType string, body []byte) (map[string]interface{}, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = ""
	}

	switch {
	case isJSONMediaType(mt):
		return decodeJSON(body)
	case mt == contentTypeForm:
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		return decodeForm(values), nil
	default:
		return map[string]interface{}{}, nil
	}
}

func decodeJSON(body []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON body: trailing data")
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("JSON body must be an object")
	}
	return m, nil
}

// decodeForm expands bracket keys: a[b]=1 nests a map, a[]=x and a[0]=x
// build a list.
func decodeForm(values url.Values) map[string]interface{} {
	out := map[string]interface{}{}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indexed := map[string]map[int]string{}

	for _, key := range keys {
		vals := values[key]
		path := splitFormKey(key)
		leaf := path[len(path)-1]

		if len(path) > 1 && leaf == "" {
			if parent, ok := descend(out, path[:len(path)-2]); ok {
				setList(parent, path[len(path)-2], vals)
			}
			continue
		}
		if len(path) > 1 {
			if idx, err := strconv.Atoi(leaf); err == nil && idx >= 0 {
				listKey := strings.Join(path[:len(path)-1], "\x00")
				if indexed[listKey] == nil {
					indexed[listKey] = map[int]string{}
				}
				indexed[listKey][idx] = vals[len(vals)-1]
				continue
			}
		}

		parent, ok := descend(out, path[:len(path)-1])
		if !ok {
			continue
		}
		if len(vals) == 1 {
			parent[leaf] = vals[0]
		} else {
			setList(parent, leaf, vals)
		}
	}

	listKeys := make([]string, 0, len(indexed))
	for k := range indexed {
		listKeys = append(listKeys, k)
	}
	sort.Strings(listKeys)
	for _, lk := range listKeys {
		path := strings.Split(lk, "\x00")
		parent, ok := descend(out, path[:len(path)-1])
		if !ok {
			continue
		}
		entries := indexed[lk]
		idxs := make([]int, 0, len(entries))
		for i := range entries {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		list := make([]interface{}, 0, len(idxs))
		for _, i := range idxs {
			list = append(list, entries[i])
		}
		parent[path[len(path)-1]] = list
	}
	return out
}

// splitFormKey splits "a[b][c]" into [a b c]. A key without brackets is
// returned whole.
func splitFormKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return []string{key}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return []string{key}
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

// descend walks path, creating maps as needed. It fails when a segment is
// already taken by a scalar or list.
func descend(m map[string]interface{}, path []string) (map[string]interface{}, bool) {
	cur := m
	for _, seg := range path {
		next, exists := cur[seg]
		if !exists || next == nil {
			child := map[string]interface{}{}
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

func setList(m map[string]interface{}, key string, vals []string) {
	list := make([]interface{}, len(vals))
	for i, v := range vals {
		list[i] = v
	}
	m[key] = list
}

package pack

import (
	"encoding/json"
	"strings"
)

// Free-text response objects the security scan does not descend into:
// their contents are user-authored or localized and may legitimately look
// like JSON.
var securityTestExcludedObjects = map[string]struct{}{
	// localization
	"body_localization":  {},
	"title_localization": {},

	// search
	"spot_detail_list":              {},
	"message_text_replacement_list": {},
}

// User-authored scalar fields the security scan skips for the same
// reason.
var securityTestExcludedProperties = map[string]struct{}{
	// user
	"username":          {},
	"full_name":         {},
	"short_description": {},

	// left menu / conversation
	"name": {},
	"text": {},

	// message
	"client_message_id": {},
	"group_name":        {},
	"new_text":          {},

	// invite
	"conversation_name":       {},
	"single_conversation_map": {},

	// file
	"file_name":       {},
	"file_extension":  {},
	"avatar_file_map": {},

	// push notification
	"title": {},
	"body":  {},

	// search
	"query": {},
}

// SanitizeForResponse rewrites every known map field of a response tree
// into its encrypted key counterpart and then asserts that no raw packet
// survived. It must run on every outbound response; both passes are
// linear in the size of the tree.
func (c *Codec) SanitizeForResponse(tree map[string]any) (map[string]any, error) {
	out, err := c.ReplaceMapsWithKeys(tree)
	if err != nil {
		return nil, err
	}
	if err := SecurityTest(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceMapsWithKeys walks an arbitrarily nested response structure and
// replaces every known singular map field and every known map-list field
// with its encrypted counterpart under the matching _key name. The input
// tree is modified in place and returned.
func (c *Codec) ReplaceMapsWithKeys(tree map[string]any) (map[string]any, error) {
	if err := c.replaceMaps(tree); err != nil {
		return nil, err
	}

	for k, v := range tree {
		switch child := v.(type) {
		case map[string]any:
			if _, err := c.ReplaceMapsWithKeys(child); err != nil {
				return nil, err
			}
		case []any:
			if err := c.replaceMapsInList(child); err != nil {
				return nil, err
			}
		default:
			_ = k
		}
	}
	return tree, nil
}

// replaceMapsInList descends into list elements, including lists of
// lists, so map fields at any depth get rewritten.
func (c *Codec) replaceMapsInList(list []any) error {
	for _, item := range list {
		switch element := item.(type) {
		case map[string]any:
			if _, err := c.ReplaceMapsWithKeys(element); err != nil {
				return err
			}
		case []any:
			if err := c.replaceMapsInList(element); err != nil {
				return err
			}
		}
	}
	return nil
}

// singularMapFields maps each replaceable field name to its encryptor.
// parent_map is absent here, it dispatches on the embedded entity tag.
func (c *Codec) singularMapFields() map[string]func(string) (string, error) {
	return map[string]func(string) (string, error){
		"message_map":      c.Message().Encrypt,
		"conversation_map": c.Conversation().Encrypt,
		"thread_map":       c.Thread().Encrypt,
		"file_map":         c.encryptFileOrEmpty,
		"invite_map":       c.Invite().Encrypt,
		"preview_map":      c.Preview().Encrypt,
		"call_map":         c.Call().Encrypt,
	}
}

// encryptFileOrEmpty keeps the empty-reference convention of file fields:
// an empty map becomes an empty key.
func (c *Codec) encryptFileOrEmpty(fileMap string) (string, error) {
	if fileMap == "" {
		return "", nil
	}
	return c.File().Encrypt(fileMap)
}

// replaceMaps rewrites the map fields of one tree level.
func (c *Codec) replaceMaps(tree map[string]any) error {
	for field, encrypt := range c.singularMapFields() {
		if err := replaceSingular(tree, field, encrypt); err != nil {
			return err
		}
		if err := replaceList(tree, field+"_list", encrypt); err != nil {
			return err
		}
	}
	return c.replaceParentMap(tree)
}

// replaceParentMap handles the polymorphic parent reference of thread
// payloads: the embedded entity tag picks the conversation or thread
// codec. Any other tag is a bug in the producing code.
func (c *Codec) replaceParentMap(tree map[string]any) error {
	raw, ok := tree["parent_map"]
	if !ok {
		return nil
	}
	m, ok := raw.(string)
	if !ok {
		return programmingErrorf("parent_map holds %T, want string", raw)
	}

	tag, err := EntityTag(m)
	if err != nil {
		return err
	}

	var key string
	switch tag {
	case conversationEntity.tag:
		key, err = c.Conversation().Encrypt(m)
	case threadEntity.tag:
		key, err = c.Thread().Encrypt(m)
	default:
		return programmingErrorf("parent_map carries unregistered entity type %q", tag)
	}
	if err != nil {
		return err
	}

	tree["parent_key"] = key
	delete(tree, "parent_map")
	return nil
}

func replaceSingular(tree map[string]any, field string, encrypt func(string) (string, error)) error {
	raw, ok := tree[field]
	if !ok {
		return nil
	}
	m, ok := raw.(string)
	if !ok {
		return programmingErrorf("%s holds %T, want string", field, raw)
	}

	key, err := encrypt(m)
	if err != nil {
		return err
	}

	tree[strings.TrimSuffix(field, "_map")+"_key"] = key
	delete(tree, field)
	return nil
}

func replaceList(tree map[string]any, field string, encrypt func(string) (string, error)) error {
	raw, ok := tree[field]
	if !ok {
		return nil
	}

	keyField := strings.TrimSuffix(field, "_map_list") + "_key_list"
	switch list := raw.(type) {
	case []any:
		keys := make([]any, len(list))
		for i, item := range list {
			m, ok := item.(string)
			if !ok {
				return programmingErrorf("%s[%d] holds %T, want string", field, i, item)
			}
			key, err := encrypt(m)
			if err != nil {
				return err
			}
			keys[i] = key
		}
		tree[keyField] = keys
	case map[string]any:
		// keyed lists keep their indices
		keys := make(map[string]any, len(list))
		for k, item := range list {
			m, ok := item.(string)
			if !ok {
				return programmingErrorf("%s[%s] holds %T, want string", field, k, item)
			}
			key, err := encrypt(m)
			if err != nil {
				return err
			}
			keys[k] = key
		}
		tree[keyField] = keys
	default:
		return programmingErrorf("%s holds %T, want list", field, raw)
	}

	delete(tree, field)
	return nil
}

// SecurityTest walks an outbound tree and fails if any scalar string that
// is not on the free-text allow-lists parses as non-empty JSON, the
// defense-in-depth proxy for "an unencrypted map escaped the rewriter".
// The failure is a programming error: it must crash loudly in testing and
// still guards production responses.
func SecurityTest(tree map[string]any) error {
	for k, v := range tree {
		switch child := v.(type) {
		case map[string]any:
			if _, excluded := securityTestExcludedObjects[k]; excluded {
				continue
			}
			if err := SecurityTest(child); err != nil {
				return err
			}
		case []any:
			if _, excluded := securityTestExcludedObjects[k]; excluded {
				continue
			}
			if err := securityTestList(child); err != nil {
				return err
			}
		case string:
			if err := assertNotJSON(k, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// securityTestList scans list elements, descending into nested lists so
// a scalar or object at any depth stays covered.
func securityTestList(list []any) error {
	for _, item := range list {
		switch element := item.(type) {
		case map[string]any:
			if err := SecurityTest(element); err != nil {
				return err
			}
		case []any:
			if err := securityTestList(element); err != nil {
				return err
			}
		case string:
			if err := assertNotJSON("", element); err != nil {
				return err
			}
		}
	}
	return nil
}

// assertNotJSON applies the leak heuristic to one scalar.
func assertNotJSON(key, value string) error {
	if _, excluded := securityTestExcludedProperties[key]; excluded {
		return nil
	}
	if !strings.HasPrefix(value, "{") {
		return nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return nil
	}
	if len(decoded) > 0 {
		return programmingErrorf("key security test failed: field %q carries a raw packet", key)
	}
	return nil
}

package pack

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
)

// signWire computes the truncated signature of a wire packet that carries
// the reserved version and entity-tag fields but not the signature field.
//
// The fields are sorted by wire key ascending and their values joined with
// a comma; the HMAC-SHA1 hex digest of that string is then shrunk by
// keeping every 5th character (1-indexed). The truncation is a fixed wire
// format, not a security margin, and must stay byte-exact.
func (c *Codec) signWire(ent *entity, wire map[string]any) (string, error) {
	version, err := wireVersion(wire)
	if err != nil {
		return "", err
	}

	salt, ok := c.salts.Salt(ent.saltNamespace(), version)
	if !ok {
		return "", programmingErrorf("no signing salt configured for %s v%d", ent.saltNamespace(), version)
	}

	keys := make([]string, 0, len(wire))
	for k := range wire {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, salt)
	for i, k := range keys {
		if i > 0 {
			mac.Write([]byte{','})
		}
		mac.Write([]byte(wireValueString(wire[k])))
	}
	digest := hex.EncodeToString(mac.Sum(nil))

	short := make([]byte, 0, len(digest)/5)
	for i := 5; i <= len(digest); i += 5 {
		short = append(short, digest[i-1])
	}
	return string(short), nil
}

// wireValueString renders one packet value the way it participates in the
// signature string.
func wireValueString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

func wireVersion(wire map[string]any) (int, error) {
	v, ok := wire[wireVersionField]
	if !ok {
		return 0, ErrUnpackFailed
	}
	n, ok := v.(int64)
	if !ok {
		return 0, ErrUnpackFailed
	}
	return int(n), nil
}

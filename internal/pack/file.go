package pack

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// File server types. Version 3 renamed the per-company file node from
// "cloud" to "domino"; maps packed before that keep the old value on the
// wire and are reinterpreted on read.
const (
	ServerTypeDomino = "domino"
	ServerTypePivot  = "pivot"

	serverTypeCloudLegacy = "cloud"
)

// Key routing prefixes. The prefix tells the edge which file node the
// ciphertext belongs to before anything is decrypted.
const (
	keyPrefixPivot   = "pivot"
	keyPrefixCompany = "company"
)

// File sources. Power of the guard allow-lists below.
const (
	FileSourceAvatar          int64 = 1
	FileSourceMessageDefault  int64 = 2
	FileSourceMessageImage    int64 = 3
	FileSourceMessageVideo    int64 = 4
	FileSourceMessageAudio    int64 = 5
	FileSourceMessageDocument int64 = 6
	FileSourceMessageVoice    int64 = 7
	FileSourceAvatarDefault   int64 = 8
	FileSourceAvatarCDN       int64 = 9
	FileSourceVideoCDN        int64 = 10
	FileSourceDocumentCDN     int64 = 11
)

// Shared assets retrievable cross-tenant by design: stock avatars, pivot
// published documents and CDN-served media. Everything else is locked to
// its owning company.
var (
	defaultFileSourceAllowedList = []int64{FileSourceAvatarDefault}
	pivotFileSourceAllowedList   = []int64{FileSourceMessageDocument}
	cdnFileSourceAllowedList     = []int64{FileSourceAvatarCDN, FileSourceVideoCDN, FileSourceDocumentCDN}
)

var fileEntity = &entity{
	tag:            "file",
	currentVersion: 3,
	schemas: map[int]wireSchema{
		1: {
			"server_type": "a",
			"shard_id":    "b",
			"table_id":    "c",
			"meta_id":     "d",
			"file_type":   "f",
			"created_at":  "e",
			"file_source": "g",
			"width":       "h",
			"height":      "i",
		},
		2: {
			"server_type": "a",
			"shard_id":    "b",
			"table_id":    "c",
			"meta_id":     "d",
			"file_type":   "f",
			"created_at":  "e",
			"file_source": "g",
			"width":       "h",
			"height":      "i",
			"company_id":  "j",
		},

		// server type renamed from cloud to domino
		3: {
			"server_type": "a",
			"shard_id":    "b",
			"table_id":    "c",
			"meta_id":     "d",
			"file_type":   "f",
			"created_at":  "e",
			"file_source": "g",
			"width":       "h",
			"height":      "i",
			"company_id":  "j",
		},
	},
	envelopeField: "file_map",
}

// File packs and unpacks file references. File keys differ from every
// other entity: they carry a routing prefix in front of the ciphertext
// and support override key material for cross-context publication.
type File struct{ c *Codec }

func (c *Codec) File() File { return File{c} }

// FilePackParams carries the identifier fields of one stored file.
type FilePackParams struct {
	ShardID    string
	TableID    int64
	MetaID     int64
	CreatedAt  int64
	FileType   int64
	FileSource int64
	Width      int64
	Height     int64
}

// Pack builds a file map at the current schema version, owned by the
// current tenant and served by the domino file node.
func (e File) Pack(params FilePackParams) (string, error) {
	return e.c.packFields(fileEntity, map[string]any{
		"server_type": ServerTypeDomino,
		"shard_id":    params.ShardID,
		"table_id":    params.TableID,
		"meta_id":     params.MetaID,
		"file_type":   params.FileType,
		"created_at":  params.CreatedAt,
		"file_source": params.FileSource,
		"width":       params.Width,
		"height":      params.Height,
		"company_id":  e.c.tenant.CompanyID(),
	})
}

// ServerType resolves the file node type, applying the pre-v3 cloud to
// domino rename. An empty map yields an empty type.
func (e File) ServerType(fileMap string) (string, error) {
	if fileMap == "" {
		return "", nil
	}
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return "", err
	}
	serverType, err := p.String("server_type")
	if err != nil {
		return "", err
	}
	if p.Version < 3 && serverType == serverTypeCloudLegacy {
		serverType = ServerTypeDomino
	}
	return serverType, nil
}

func (e File) ShardID(fileMap string) (string, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return "", err
	}
	return p.String("shard_id")
}

func (e File) TableID(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Int("table_id")
}

func (e File) MetaID(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Int("meta_id")
}

func (e File) FileType(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Int("file_type")
}

func (e File) FileSource(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Int("file_source")
}

func (e File) CreatedAt(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Int("created_at")
}

// ImageWidth is zero for maps packed before dimensions were recorded.
func (e File) ImageWidth(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.intOrZero("width"), nil
}

// ImageHeight is zero for maps packed before dimensions were recorded.
func (e File) ImageHeight(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.intOrZero("height"), nil
}

// CompanyID recovers the owning tenant. Maps packed before v3 carry no
// company field and are by definition owned by the tenant that stored
// them, so the current tenant is returned.
func (e File) CompanyID(fileMap string) (int64, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	if p.Version == fileEntity.currentVersion {
		return p.Int("company_id")
	}
	return e.c.tenant.CompanyID(), nil
}

func (e File) Version(fileMap string) (int, error) {
	p, err := e.c.unpackMap(fileEntity, fileMap)
	if err != nil {
		return 0, err
	}
	return p.Version, nil
}

// ShardIDByTime derives the year shard a file created at t lives in.
func (e File) ShardIDByTime(t time.Time) string {
	return strconv.Itoa(t.Year())
}

// TableIDByTime derives the month table a file created at t lives in.
func (e File) TableIDByTime(t time.Time) int64 {
	return int64(t.Month())
}

// Encrypt turns a file map into its key form, prefixed with the routing
// tag of the node that serves it.
func (e File) Encrypt(fileMap string) (string, error) {
	return e.encrypt(fileMap, nil, nil)
}

// EncryptWith encrypts using override key material, for publishing a file
// reference signed for a different audience. Override results bypass the
// memoization cache so they can never be confused with default-audience
// keys.
func (e File) EncryptWith(fileMap string, key, vector []byte) (string, error) {
	return e.encrypt(fileMap, key, vector)
}

func (e File) encrypt(fileMap string, key, vector []byte) (string, error) {
	override := key != nil || vector != nil
	if !override {
		if cached, ok := e.c.cache.lookupKey(fileEntity.tag, fileMap); ok {
			return cached, nil
		}
	}

	serverType, err := e.ServerType(fileMap)
	if err != nil {
		return "", err
	}
	prefix := keyPrefixCompany
	if serverType == ServerTypePivot {
		prefix = keyPrefixPivot
	}

	encrypted, err := e.c.encryptMap(fileEntity, fileMap, key, vector)
	if err != nil {
		return "", err
	}
	fileKey := prefix + "." + encrypted

	if !override {
		e.c.cache.storeKey(fileEntity.tag, fileMap, fileKey)
	}
	return fileKey, nil
}

// Decrypt turns a client-supplied file key back into a map, verifying the
// routing prefix shape and the ownership of the referenced file.
func (e File) Decrypt(fileKey string) (string, error) {
	return e.decrypt(fileKey, nil, nil)
}

// DecryptWith decrypts using override key material. See EncryptWith.
func (e File) DecryptWith(fileKey string, key, vector []byte) (string, error) {
	return e.decrypt(fileKey, key, vector)
}

func (e File) decrypt(fileKey string, key, vector []byte) (string, error) {
	override := key != nil || vector != nil
	if !override {
		if m, ok := e.c.cache.lookupMap(fileEntity.tag, fileKey); ok {
			return m, nil
		}
	}

	_, encrypted, err := splitFileKey(fileKey)
	if err != nil {
		return "", err
	}

	m, err := e.c.decryptRawKey(fileEntity, encrypted, key, vector)
	if err != nil {
		return "", err
	}

	if err := e.assertFileAvailable(m); err != nil {
		return "", err
	}

	if !override {
		e.c.cache.storeMap(fileEntity.tag, fileKey, m)
	}
	return m, nil
}

// assertFileAvailable is the file flavor of the tenant guard: the file
// must belong to the current company unless its source is on one of the
// shared allow-lists.
func (e File) assertFileAvailable(fileMap string) error {
	companyID, err := e.CompanyID(fileMap)
	if err != nil {
		return err
	}
	current := e.c.tenant.CompanyID()
	if companyID == current {
		return nil
	}

	source, err := e.FileSource(fileMap)
	if err != nil {
		return err
	}
	if containsSource(defaultFileSourceAllowedList, source) ||
		containsSource(pivotFileSourceAllowedList, source) ||
		containsSource(cdnFileSourceAllowedList, source) {
		return nil
	}

	return &CrossTenantError{Entity: fileEntity.tag, WantCompanyID: current, GotCompanyID: companyID}
}

// TryDecrypt folds every validation failure into the uniform
// invalid-reference error.
func (e File) TryDecrypt(fileKey string) (string, error) {
	m, err := e.Decrypt(fileKey)
	if err != nil {
		return "", foldForUser(err)
	}
	return m, nil
}

// splitFileKey cuts the routing prefix off a file key. The split is on
// the first dot and must yield exactly two parts, the second of which is
// validated as ciphertext before any cryptographic work.
func splitFileKey(fileKey string) (prefix, encrypted string, err error) {
	parts := strings.Split(fileKey, ".")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: malformed key prefix", ErrInvalidKey)
	}
	if err := checkCorrectKey(parts[1]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}

func containsSource(list []int64, source int64) bool {
	for _, s := range list {
		if s == source {
			return true
		}
	}
	return false
}

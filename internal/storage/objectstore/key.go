package objectstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role names one of the three renditions a media item can have in the bucket.
type Role string

const (
	RoleOriginal  Role = "original"
	RoleOptimized Role = "optimized"
	RoleThumbnail Role = "thumbnail"
)

const keyPrefix = "galleries"

// Key builds the deterministic storage key for one object:
//
//	galleries/{photographer}/{album}/{role}/{filename}
//
// It is the single point of truth for the storage namespace; no other
// component constructs keys by hand. Role and album segments keep renditions
// and albums of the same owner collision-free.
func Key(photographerID, albumID uuid.UUID, filename string, role Role) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", keyPrefix, photographerID, albumID, role, filename)
}

// ParsedKey is the decomposition of a storage key produced by Key.
type ParsedKey struct {
	PhotographerID uuid.UUID
	AlbumID        uuid.UUID
	Role           Role
	Filename       string
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (ParsedKey, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 || parts[0] != keyPrefix {
		return ParsedKey{}, fmt.Errorf("malformed storage key %q", key)
	}

	ownerID, err := uuid.Parse(parts[1])
	if err != nil {
		return ParsedKey{}, fmt.Errorf("malformed owner segment in key %q: %w", key, err)
	}

	albumID, err := uuid.Parse(parts[2])
	if err != nil {
		return ParsedKey{}, fmt.Errorf("malformed album segment in key %q: %w", key, err)
	}

	role := Role(parts[3])
	switch role {
	case RoleOriginal, RoleOptimized, RoleThumbnail:
	default:
		return ParsedKey{}, fmt.Errorf("unknown role %q in key %q", parts[3], key)
	}

	if parts[4] == "" {
		return ParsedKey{}, fmt.Errorf("empty filename in key %q", key)
	}

	return ParsedKey{
		PhotographerID: ownerID,
		AlbumID:        albumID,
		Role:           role,
		Filename:       parts[4],
	}, nil
}

// Ext returns the lower-cased extension of filename without the dot, or ""
// when there is none.
func Ext(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

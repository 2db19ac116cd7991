package objectstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	owner := uuid.New()
	album := uuid.New()

	for _, role := range []Role{RoleOriginal, RoleOptimized, RoleThumbnail} {
		key := Key(owner, album, "photo.jpg", role)

		parsed, err := ParseKey(key)
		require.NoError(t, err)

		assert.Equal(t, owner, parsed.PhotographerID)
		assert.Equal(t, album, parsed.AlbumID)
		assert.Equal(t, role, parsed.Role)
		assert.Equal(t, "photo.jpg", parsed.Filename)
	}
}

func TestKeyShape(t *testing.T) {
	owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	album := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	key := Key(owner, album, "a.jpg", RoleOriginal)

	assert.Equal(t,
		"galleries/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/original/a.jpg",
		key)
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"wrong prefix", "uploads/x/y/original/a.jpg"},
		{"too few segments", "galleries/a/b/original"},
		{"too many segments", "galleries/a/b/original/c/d"},
		{"bad owner uuid", "galleries/not-a-uuid/22222222-2222-2222-2222-222222222222/original/a.jpg"},
		{"bad album uuid", "galleries/11111111-1111-1111-1111-111111111111/nope/original/a.jpg"},
		{"unknown role", "galleries/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/raw/a.jpg"},
		{"empty filename", "galleries/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/original/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.key)
			require.Error(t, err)
		})
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, "jpg", Ext("photo.jpg"))
	assert.Equal(t, "jpeg", Ext("photo.JPEG"))
	assert.Equal(t, "gz", Ext("archive.tar.gz"))
	assert.Equal(t, "", Ext("noext"))
	assert.Equal(t, "", Ext("trailing."))
}

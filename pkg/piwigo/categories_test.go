package piwigo

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/pwgsync/pwgsync/pkg/types"
)

func TestDecodeCategories(t *testing.T) {
	raw := gjson.Parse(`[
		{"id":"1","name":"Trips &amp; Tours","id_uppercat":null,"uppercats":"1","nb_images":"12","status":"public"},
		{"id":2,"name":"Norway","id_uppercat":"1","uppercats":"1,2","nb_images":0,"fullname":"Trips &amp; Tours / Norway"},
		{"id":"3","name":"Misc","id_uppercat":"","comment":null}
	]`).Value()

	cats, err := decodeCategories(raw)
	require.NoError(t, err)
	require.Len(t, cats, 3)

	assert.Equal(t, int64(1), cats[0].ID)
	assert.Equal(t, "Trips & Tours", cats[0].Name)
	assert.True(t, cats[0].ParentID.IsNil())
	assert.Equal(t, 12, cats[0].NbImages)
	assert.Equal(t, "public", cats[0].Status)

	assert.Equal(t, int64(2), cats[1].ID)
	assert.Equal(t, types.NullableIntFrom(1), cats[1].ParentID)
	assert.Equal(t, "Trips & Tours / Norway", cats[1].FullName)

	assert.True(t, cats[2].ParentID.IsNil())
}

func TestDecodeCategoriesRejectsBadIDs(t *testing.T) {
	raw := gjson.Parse(`[{"id":"1","name":"A","id_uppercat":"one"}]`).Value()
	_, err := decodeCategories(raw)
	assert.Error(t, err)
}

func TestListCategories(t *testing.T) {
	srv := newFakeServer(t)
	trips := srv.AddAlbum("Trips", 0)
	norway := srv.AddAlbum("Norway", trips)
	c := loggedInClient(t, srv)

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, trips, cats[0].ID)
	assert.True(t, cats[0].ParentID.IsNil())
	assert.Equal(t, norway, cats[1].ID)
	assert.Equal(t, types.NullableIntFrom(trips), cats[1].ParentID)
	assert.Equal(t, "1,2", cats[1].Uppercats)
}

func TestListCategoriesMalformed(t *testing.T) {
	srv := newFakeServer(t)
	c := loggedInClient(t, srv)
	srv.ReplyOnce(MethodGetAdminList, http.StatusOK, `{"stat":"ok","result":{"categories":[{"id":"x"}]}}`)

	_, err := c.ListCategories(context.Background())
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestAddCategory(t *testing.T) {
	srv := newFakeServer(t)
	c := loggedInClient(t, srv)
	ctx := context.Background()

	root, err := c.AddCategory(ctx, "Trips", types.NullInt())
	require.NoError(t, err)
	child, err := c.AddCategory(ctx, "Norway", types.NullableIntFrom(root))
	require.NoError(t, err)

	albums := srv.Albums()
	require.Len(t, albums, 2)
	assert.Equal(t, root, albums[0].ID)
	assert.Equal(t, child, albums[1].ID)
	assert.Equal(t, root, albums[1].ParentID)

	_, err = c.AddCategory(ctx, "Orphan", types.NullableIntFrom(999))
	assert.ErrorIs(t, err, ErrAPI)
	assert.Equal(t, 1004, ErrorCode(err))

	srv.ReplyOnce(MethodAddCategory, http.StatusOK, `{"stat":"ok","result":{"id":"0"}}`)
	_, err = c.AddCategory(ctx, "Zero", types.NullInt())
	assert.ErrorIs(t, err, ErrProtocol)
}

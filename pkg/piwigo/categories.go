package piwigo

import (
	"context"
	"fmt"
	"html"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/pwgsync/pwgsync/pkg/types"
)

// Category is an album as listed by pwg.categories.getAdminList.
type Category struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	ParentID  types.NullableInt `json:"id_uppercat"` // null for a top level album
	Uppercats string            `json:"uppercats,omitempty"`
	FullName  string            `json:"fullname,omitempty"`
	Comment   string            `json:"comment,omitempty"`
	Status    string            `json:"status,omitempty"` // public or private
	NbImages  int               `json:"nb_images"`
}

var nullableIntType = reflect.TypeOf(types.NullableInt{})

// nullableIntHook decodes JSON numbers, numeric strings and null into types.NullableInt.
func nullableIntHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != nullableIntType {
		return data, nil
	}
	var ni types.NullableInt
	switch v := data.(type) {
	case string:
		if err := ni.Parse(v); err != nil {
			return nil, err
		}
	case float64:
		ni = types.NullableIntFrom(int64(v))
	case int:
		ni = types.NullableIntFrom(int64(v))
	case int64:
		ni = types.NullableIntFrom(v)
	default:
		return data, nil
	}
	return ni, nil
}

func decodeCategories(raw any) ([]Category, error) {
	var cats []Category
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       nullableIntHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &cats,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	for i := range cats {
		cats[i].Name = html.UnescapeString(cats[i].Name)
		cats[i].FullName = html.UnescapeString(cats[i].FullName)
	}
	return cats, nil
}

// ListCategories returns every album visible to the administrator.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	result, err := c.Call(ctx, MethodGetAdminList, nil)
	if err != nil {
		return nil, err
	}
	list := result.Get("categories")
	if !list.IsArray() {
		return nil, ErrProtocol.Msg("getAdminList reply has no category list")
	}
	cats, err := decodeCategories(list.Value())
	if err != nil {
		return nil, ErrProtocol.MsgErr("unable to decode category list", err)
	}
	return cats, nil
}

// AddCategory creates an album named name below parent and returns its id.
// A null parent creates a top level album; the parent parameter is then omitted.
func (c *Client) AddCategory(ctx context.Context, name string, parent types.NullableInt) (int64, error) {
	params := map[string]string{"name": name}
	if parent.Valid {
		params["parent"] = strconv.FormatInt(parent.Value, 10)
	}
	result, err := c.Call(ctx, MethodAddCategory, params)
	if err != nil {
		return 0, err
	}
	id := result.Get("id")
	if !id.Exists() {
		return 0, ErrProtocol.Msg("category add reply has no id")
	}
	if id.Int() <= 0 {
		return 0, ErrProtocol.Msg(fmt.Sprintf("category add reply has invalid id %q", id.Raw))
	}
	return id.Int(), nil
}

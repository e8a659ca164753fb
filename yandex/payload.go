package yandex

import (
	"github.com/xeptore/yamusic/yandex/api"
)

type ID = api.ID

type Cover struct {
	Type   string `json:"type,omitempty"`
	URI    string `json:"uri,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

type Major struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Pager struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

func decodeResponse[T any](resp *api.Response) (T, error) {
	var out T
	if err := resp.Decode(&out); nil != err {
		return out, err
	}
	return out, nil
}

package api

import (
	"context"
	"net/url"

	"github.com/sendgrid/rest"

	"github.com/trezcool/preskool/core/listing"
)

var (
	_ listing.Source  = (*Resource)(nil)
	_ listing.Mutator = (*Resource)(nil)
)

// Resource is the REST collection of one entity: /v1/{entity}.
type Resource struct {
	client *Client
	entity string
}

func (r *Resource) Entity() string { return r.entity }

func (r *Resource) path(id ...string) string {
	p := apiPrefix + "/" + url.PathEscape(r.entity)
	if len(id) > 0 {
		p += "/" + url.PathEscape(id[0])
	}
	return p
}

// List fetches the collection; params become query filters.
func (r *Resource) List(ctx context.Context, params listing.Params) (interface{}, error) {
	return r.client.send(ctx, rest.Get, r.path(), params, nil, true)
}

func (r *Resource) Create(ctx context.Context, payload map[string]interface{}) (interface{}, error) {
	return r.client.send(ctx, rest.Post, r.path(), nil, payload, true)
}

func (r *Resource) Update(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error) {
	return r.client.send(ctx, rest.Patch, r.path(id), nil, payload, true)
}

func (r *Resource) Delete(ctx context.Context, id string) (interface{}, error) {
	return r.client.send(ctx, rest.Delete, r.path(id), nil, nil, true)
}

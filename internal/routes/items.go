package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/huma-items-filter/internal/filter"
	appmiddleware "github.com/janisto/huma-items-filter/internal/middleware"
	"github.com/janisto/huma-items-filter/internal/respond"
)

const (
	itemsPath         = "/items/"
	itemsRedirectPath = "/items"
)

// ItemsInput binds the item listing query through filter.Bind.
// Query keys are read in Resolve rather than through struct tags so that
// defaults and coercion live in one place.
type ItemsInput struct {
	params filter.Params
}

// Resolve implements huma.Resolver. The raw query is decoded with
// filter.ParseQuery so values with malformed escapes still reach coercion.
// A *filter.ValidationError is returned as is; the responder expands it
// into one field issue per rejected parameter.
func (in *ItemsInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	p, err := filter.Bind(filter.ParseQuery(u.RawQuery))
	if err != nil {
		return []error{err}
	}
	in.params = p
	return nil
}

// Params returns the bound filter.
func (in *ItemsInput) Params() filter.Params {
	return in.params
}

// ItemsOutput echoes the bound filter.
type ItemsOutput struct {
	Body filter.Params
}

func registerItems(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        itemsPath,
		Summary:     "Echo item filter parameters",
		Description: "Binds pagination, search and category query parameters and returns them. " +
			"Missing parameters take their defaults; unknown parameters are ignored.",
		Tags:       []string{"Items"},
		Parameters: itemsParameters(),
	}, func(ctx context.Context, input *ItemsInput) (*ItemsOutput, error) {
		p := input.Params()
		fields := []zap.Field{
			zap.Int("limit", p.Limit),
			zap.Int("offset", p.Offset),
			zap.Strings("categories", p.Categories),
		}
		if p.HasQuery() {
			fields = append(fields, zap.String("q", *p.Q))
		}
		appmiddleware.LogInfo(ctx, "items filter bound", fields...)
		return &ItemsOutput{Body: p}, nil
	})
}

func itemsParameters() []*huma.Param {
	explode := true
	return []*huma.Param{
		{
			Name:        filter.KeyLimit,
			In:          "query",
			Description: "Maximum number of items to return",
			Schema:      &huma.Schema{Type: huma.TypeInteger, Default: filter.DefaultLimit},
		},
		{
			Name:        filter.KeyOffset,
			In:          "query",
			Description: "Number of items to skip",
			Schema:      &huma.Schema{Type: huma.TypeInteger, Default: filter.DefaultOffset},
		},
		{
			Name:        filter.KeyQuery,
			In:          "query",
			Description: "Search keyword",
			Schema:      &huma.Schema{Type: huma.TypeString},
		},
		{
			Name:        filter.KeyCategories,
			In:          "query",
			Description: "Category filter; repeat the parameter for several categories",
			Explode:     &explode,
			Schema: &huma.Schema{
				Type:  huma.TypeArray,
				Items: &huma.Schema{Type: huma.TypeString},
			},
		},
	}
}

// redirectItems sends /items to /items/ keeping the query string, matching
// the trailing slash form clients are expected to use.
func redirectItems(w http.ResponseWriter, r *http.Request) {
	location := itemsPath
	if r.URL.RawQuery != "" {
		location += "?" + r.URL.RawQuery
	}
	respond.WriteRedirect(w, r, http.StatusTemporaryRedirect, location)
}

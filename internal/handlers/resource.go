package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/parliament/internal/filter"
	"github.com/jjenkins/parliament/internal/paginate"
	"github.com/jjenkins/parliament/internal/query"
	"github.com/jjenkins/parliament/internal/templates"
)

// apiPageSize is the page size of every JSON list
const apiPageSize = 20

var noFilters = filter.NewRegistry(nil)

// ListView serves a filterable, paginated collection. JSON requests get the
// structured list; HTML requests get HTML when the view has a renderer, and
// the browsable API page otherwise.
type ListView[T any] struct {
	Name    string
	Notes   string
	Filters *filter.Registry
	Query   func() query.Set[T]
	Object  func(T) fiber.Map
	PerPage int
	HTML    fiber.Handler
}

// Handler returns the fiber handler for the view
func (v *ListView[T]) Handler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vary(c)
		rep := selectRepresentation(c)
		if rep != JSON && v.HTML != nil {
			return v.HTML(c)
		}

		body, err := v.list(c, env)
		if err != nil {
			if _, ok := filter.AsError(err); ok {
				return filterError(c, env.Log, rep, err)
			}
			return serverError(c, env.Log, "Error loading "+v.Name, err)
		}
		if rep == JSON {
			return c.JSON(body)
		}
		return browsable(c, v.Name, v.Notes, v.registry(), body)
	}
}

func (v *ListView[T]) registry() *filter.Registry {
	if v.Filters == nil {
		return noFilters
	}
	return v.Filters
}

// list resolves filters before anything is queried, then loads one page
func (v *ListView[T]) list(c *fiber.Ctx, env *Env) (fiber.Map, error) {
	ctx := c.UserContext()
	params := queryValues(c)

	conds, applied, err := v.registry().Parse(ctx, params, env.Politicians)
	if err != nil {
		return nil, err
	}

	perPage := v.PerPage
	if perPage == 0 {
		perPage = apiPageSize
	}
	page, err := paginate.Fetch[T](ctx, v.Query().Filter(conds...), perPage, params.Get("page"))
	if err != nil {
		return nil, err
	}

	objects := make([]fiber.Map, 0, len(page.Items))
	for _, item := range page.Items {
		objects = append(objects, v.Object(item))
	}

	pagination := fiber.Map{
		"page":         page.Number,
		"pages":        page.NumPages,
		"next_url":     nil,
		"previous_url": nil,
	}
	if page.HasNext() {
		pagination["next_url"] = pageURL(c.Path(), params, page.NextNumber())
	}
	if page.HasPrevious() {
		pagination["previous_url"] = pageURL(c.Path(), params, page.PreviousNumber())
	}

	body := fiber.Map{
		"objects":    objects,
		"filters":    applied,
		"pagination": pagination,
	}
	if len(applied) == 0 {
		body["help"] = v.registry().Help()
	}
	if v.Notes != "" {
		body["notes"] = v.Notes
	}
	return body, nil
}

func pageURL(path string, params url.Values, number int) string {
	next := url.Values{}
	for k, vs := range params {
		next[k] = append([]string(nil), vs...)
	}
	next.Set("page", fmt.Sprint(number))
	return path + "?" + next.Encode()
}

// DetailView serves a single object looked up by its natural key
type DetailView[T any] struct {
	Name    string
	Notes   string
	Get     func(c *fiber.Ctx) (*T, error)
	Object  func(*T) fiber.Map
	Related func(obj *T, dict fiber.Map) fiber.Map
	HTML    fiber.Handler
}

// Handler returns the fiber handler for the view
func (v *DetailView[T]) Handler(env *Env) fiber.Handler {
	return func(c *fiber.Ctx) error {
		vary(c)
		rep := selectRepresentation(c)
		if rep != JSON && v.HTML != nil {
			return v.HTML(c)
		}

		obj, err := v.Get(c)
		if err != nil {
			return serverError(c, env.Log, "Error loading "+v.Name, err)
		}
		if obj == nil {
			return notFound(c, v.Name)
		}

		dict := v.Object(obj)
		if v.Related != nil {
			dict["related"] = v.Related(obj, dict)
		}
		if rep == JSON {
			return c.JSON(dict)
		}
		return browsable(c, v.Name, v.Notes, noFilters, dict)
	}
}

// browsable renders a JSON body as an HTML page
func browsable(c *fiber.Ctx, name, notes string, reg *filter.Registry, body fiber.Map) error {
	data, err := json.MarshalIndent(body, "", "    ")
	if err != nil {
		return err
	}
	return render(c, templates.APIPage(templates.APIPageData{
		Name:    name,
		Notes:   notes,
		JSON:    string(data),
		Filters: reg.Names(),
		Help:    reg.Help(),
	}))
}

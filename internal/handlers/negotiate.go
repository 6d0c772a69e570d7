package handlers

import (
	"net/url"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jjenkins/parliament/internal/filter"
	"go.uber.org/zap"
)

// Representation is the form a response takes
type Representation int

const (
	// Page is a complete HTML document
	Page Representation = iota
	// Fragment is the partial HTML an in-page XMLHttpRequest asks for
	Fragment
	// JSON is the structured API representation
	JSON
)

// selectRepresentation derives the representation from request metadata
// only. Every header consulted here is listed in varyHeaders so shared
// caches key on it.
func selectRepresentation(c *fiber.Ctx) Representation {
	if c.Query("format") == "json" {
		return JSON
	}
	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return JSON
	}
	if c.Get("X-Requested-With") == "XMLHttpRequest" || c.Get("HX-Request") == "true" {
		return Fragment
	}
	return Page
}

var varyHeaders = []string{fiber.HeaderAccept, "X-Requested-With", "HX-Request"}

func vary(c *fiber.Ctx) {
	c.Vary(varyHeaders...)
}

func render(c *fiber.Ctx, page templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(page))
	return handler(c)
}

func queryValues(c *fiber.Ctx) url.Values {
	// malformed pairs are dropped; everything that parsed is kept
	values, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return values
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).SendString(what + " not found")
}

func serverError(c *fiber.Ctx, log *zap.Logger, msg string, err error) error {
	log.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).SendString(msg)
}

// filterError answers a rejected filter with 400, or a lookup failure
// during filter parsing with 500
func filterError(c *fiber.Ctx, log *zap.Logger, rep Representation, err error) error {
	fe, ok := filter.AsError(err)
	if !ok {
		return serverError(c, log, "Error applying filters", err)
	}
	if rep == JSON {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     fe.Error(),
			"parameter": fe.Param,
		})
	}
	return c.Status(fiber.StatusBadRequest).SendString(fe.Error())
}

// VaryHeaders lists the request headers that select a representation
func VaryHeaders() []string {
	return append([]string(nil), varyHeaders...)
}

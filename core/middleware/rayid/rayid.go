package rayid

import (
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the RayID on requests and responses.
const Header = "X-Ray-ID"

// LocalsKey is the Fiber locals key holding the RayID.
const LocalsKey = "ray_id"

var valid = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// New returns a middleware that assigns a RayID to every request. A
// well-formed incoming header is reused; anything else is replaced.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if !valid.MatchString(id) {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}

// FromCtx returns the RayID of the request, or "".
func FromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsKey).(string)
	return id
}

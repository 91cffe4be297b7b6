package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a uuid so pipeline runs can be
// correlated in the logs.
func RequestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("requestID", id)
	c.Set("X-Request-ID", id)
	return c.Next()
}

// RequestLogger logs method, path, status and duration for each request.
func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("[%v] %s %s -> %d (%s)",
		c.Locals("requestID"), c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
	return err
}

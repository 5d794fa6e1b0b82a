package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/types"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// StoreErrorResponse reports an error returned by the cube store with its mapped status.
// Merge conflicts carry the per-cube details.
func StoreErrorResponse(c *fiber.Ctx, err error) error {
	ce := types.FromError(err)
	return c.Status(ce.Code).JSON(ErrorResponseStruct{
		Status:    ce.Code,
		Message:   ce.Message,
		Ok:        false,
		Timestamp: timestamp(),
		URL:       c.OriginalURL(),
		Type:      ce.Type,
		Conflicts: ce.Conflicts,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "notFound")
}

// MutationSuccessResponse sends the revision a mutation wrote.
func MutationSuccessResponse(c *fiber.Ctx, info *ncube.CubeInfo) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:   "Success",
		Ok:        true,
		Timestamp: timestamp(),
		Info:      info,
	})
}

// CountResponse sends the number of cubes or rows a bulk operation touched.
func CountResponse(c *fiber.Ctx, affected int64) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponseStruct{
		Message:      "Success",
		Ok:           true,
		Timestamp:    timestamp(),
		AffectedRows: affected,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int              `json:"status"`
	Message   string           `json:"message"`
	Ok        bool             `json:"ok"`
	Timestamp string           `json:"timestamp"`
	URL       string           `json:"url"`
	Type      string           `json:"type,omitempty"`
	Conflicts []ncube.Conflict `json:"conflicts,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message      string          `json:"message"`
	Ok           bool            `json:"ok"`
	Timestamp    string          `json:"timestamp"`
	Info         *ncube.CubeInfo `json:"info,omitempty"`
	AffectedRows int64           `json:"affectedRows"`
}

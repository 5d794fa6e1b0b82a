package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/ncube"
)

type CustomError struct {
	Code      int              `json:"code"`
	Message   string           `json:"message"`
	Type      string           `json:"type"`
	Conflicts []ncube.Conflict `json:"conflicts,omitempty"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// FromError maps a cube store error onto the HTTP error it is reported as.
func FromError(err error) *CustomError {
	if err == nil {
		return nil
	}

	var custom *CustomError
	if errors.As(err, &custom) {
		return custom
	}

	var conflict *ncube.MergeConflictError
	if errors.As(err, &conflict) {
		ce := &CustomError{Code: fiber.StatusConflict, Message: conflict.Error(), Type: "cube.conflict"}
		for _, name := range conflict.Names() {
			ce.Conflicts = append(ce.Conflicts, conflict.Conflicts[name])
		}
		return ce
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &CustomError{Code: fe.Code, Message: fe.Message, Type: "request"}
	}

	switch {
	case errors.Is(err, ncube.ErrCubeNotFound), ncube.IsCoordinateNotFound(err):
		return &CustomError{Code: fiber.StatusNotFound, Message: err.Error(), Type: "cube.notFound"}
	case errors.Is(err, ncube.ErrIllegalArgument):
		return &CustomError{Code: fiber.StatusBadRequest, Message: err.Error(), Type: "cube.illegalArgument"}
	case errors.Is(err, ncube.ErrIllegalState):
		return &CustomError{Code: fiber.StatusConflict, Message: err.Error(), Type: "cube.illegalState"}
	}
	return &CustomError{Code: fiber.StatusInternalServerError, Message: err.Error(), Type: "unknown"}
}

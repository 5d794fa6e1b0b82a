package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	appID := ncube.MustApplicationID("acme", "rates", "1.0.0", ncube.StatusSnapshot, ncube.HeadBranch)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"cube not found", ncube.CubeNotFound("Age", appID), fiber.StatusNotFound},
		{"coordinate not found", fmt.Errorf("execute: %w", &ncube.CoordinateNotFoundError{CubeName: "Age"}), fiber.StatusNotFound},
		{"illegal argument", ncube.IllegalArgument("bad name"), fiber.StatusBadRequest},
		{"illegal state", ncube.IllegalState("stale"), fiber.StatusConflict},
		{"fiber error", fiber.NewError(fiber.StatusUnprocessableEntity, "bad body"), fiber.StatusUnprocessableEntity},
		{"other", fmt.Errorf("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, FromError(tt.err).Code)
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestFromMergeConflict(t *testing.T) {
	conflict := ncube.NewMergeConflictError()
	conflict.Add(ncube.Conflict{Name: "Twin", Reason: ncube.ReasonCreatedIndependently})
	conflict.Add(ncube.Conflict{Name: "Age", Reason: ncube.ReasonHeadChanged})

	ce := FromError(fmt.Errorf("commit: %w", conflict))
	assert.Equal(t, fiber.StatusConflict, ce.Code)
	require.Len(t, ce.Conflicts, 2)
	assert.Equal(t, "Age", ce.Conflicts[0].Name)
	assert.Equal(t, "cube.conflict", ce.Type)
}

func TestFlexList(t *testing.T) {
	var body struct {
		Names FlexList[string] `json:"names"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"names":"Age"}`), &body))
	assert.Equal(t, []string{"Age"}, body.Names.Slice())

	require.NoError(t, json.Unmarshal([]byte(`{"names":["Age","Rates"]}`), &body))
	assert.Equal(t, []string{"Age", "Rates"}, body.Names.Slice())

	require.NoError(t, json.Unmarshal([]byte(`{"names":null}`), &body))
	assert.Empty(t, body.Names)
}

func TestFlexInt64(t *testing.T) {
	var body struct {
		Revision FlexInt64 `json:"revision"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"revision":3}`), &body))
	assert.Equal(t, int64(3), body.Revision.Int64())

	require.NoError(t, json.Unmarshal([]byte(`{"revision":"-1"}`), &body))
	assert.Equal(t, int64(-1), body.Revision.Int64())

	assert.Error(t, json.Unmarshal([]byte(`{"revision":"latest"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"revision":true}`), &body))

	v, err := ParseFlexInt64("12")
	require.NoError(t, err)
	assert.Equal(t, FlexInt64(12), v)
}

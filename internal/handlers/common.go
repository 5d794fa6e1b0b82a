// common.go
//
// A versioned, multidimensional decision-table store
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of cubedb.
// cubedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// cubedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with cubedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
	"github.com/localnerve/cubedb/internal/types"
	"github.com/localnerve/cubedb/internal/utils"
)

// appIDFromParams reads the coordinate segments of /cubes/:tenant/:app/:version/:status/:branch.
func appIDFromParams(c *fiber.Ctx) (*ncube.ApplicationID, error) {
	return ncube.NewApplicationID(
		c.Params("tenant"),
		c.Params("app"),
		c.Params("version"),
		ncube.ReleaseStatus(c.Params("status")),
		c.Params("branch"),
	)
}

// parseNames extracts cube names from query parameters,
// supporting both multiple 'names' keys and comma-separated values.
func parseNames(c *fiber.Ctx) []string {
	seen := make(map[string]struct{})
	var names []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != "names" {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[strings.ToLower(v)]; dup {
				continue
			}
			seen[strings.ToLower(v)] = struct{}{}
			names = append(names, v)
		}
	}
	return names
}

// namesFromRequest prefers names in the body and falls back to the query string. No
// names means every changed cube.
func namesFromRequest(c *fiber.Ctx) ([]string, error) {
	var body struct {
		Names types.FlexList[string] `json:"names"`
	}
	if len(bytes.TrimSpace(c.Body())) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid input")
		}
	}
	if len(body.Names) > 0 {
		return body.Names.Slice(), nil
	}
	return parseNames(c), nil
}

func parseFilter(s string) (persister.Filter, error) {
	switch strings.ToLower(s) {
	case "", "active":
		return persister.FilterActive, nil
	case "deleted":
		return persister.FilterDeleted, nil
	case "all":
		return persister.FilterAll, nil
	}
	return 0, ncube.IllegalArgument("unknown filter %q, expected active, deleted or all", s)
}

// decodeInput reads a JSON object keeping numbers exact, so LONG axes bind without a
// float round trip.
func decodeInput(data []byte) (map[string]any, error) {
	input := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return input, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	return input, nil
}

// ErrorHandler handles errors globally
func ErrorHandler(c *fiber.Ctx, err error) error {
	return utils.StoreErrorResponse(c, err)
}

// NotFound answers unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponseStruct{
		Status:    fiber.StatusNotFound,
		Message:   "[404] Resource Not Found",
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
	})
}

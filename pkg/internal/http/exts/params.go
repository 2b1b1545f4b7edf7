package exts

import (
	"os"
	"path/filepath"

	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/services/queries"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func PageRequestOf(c *fiber.Ctx, defaultLimit int) queries.PageRequest {
	return queries.NewPageRequest(c.QueryInt("page", 1), c.QueryInt("limit", 0), defaultLimit)
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, key string) (uint, error) {
	id, err := c.ParamsInt(key, 0)
	if err != nil || id <= 0 {
		return 0, services.ValidationError("invalid %s", key)
	}
	return uint(id), nil
}

// SaveUploadedFile copies a multipart file into the temp directory.
// The path is empty when the request carries no such field, cleanup is always safe to call.
func SaveUploadedFile(c *fiber.Ctx, field string) (string, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil || header == nil {
		return "", noop, nil
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(header.Filename))
	if err := c.SaveFile(header, path); err != nil {
		return "", noop, services.UploadError(err, "unable to receive %s", field)
	}
	return path, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Unable to remove temporary upload...")
		}
	}, nil
}

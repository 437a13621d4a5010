package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/storage"
	"quickloan/internal/utils"
)

var errInvalidBody = apperrors.Validation("INVALID_BODY", "Invalid request body")

// claimsFrom returns the claims stored by the auth middleware. Every caller
// sits behind it, so a missing value yields empty claims.
func claimsFrom(c *fiber.Ctx) *models.UserClaims {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return &models.UserClaims{}
	}
	return claims
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound("INVALID_ID", "Not found")
	}
	return uint(id), nil
}

// formUpload reads a multipart file field. The returned closer must be
// called once the upload has been consumed.
func formUpload(c *fiber.Ctx, field string) (storage.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return storage.Upload{}, nil, apperrors.ValidationFields(map[string]string{field: "Please choose a file to upload"})
	}
	f, err := fh.Open()
	if err != nil {
		return storage.Upload{}, nil, err
	}
	return toUpload(fh, f), func() { f.Close() }, nil
}

func toUpload(fh *multipart.FileHeader, f multipart.File) storage.Upload {
	return storage.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"quickloan/internal/services/profile"
	"quickloan/internal/utils"
)

type ProfileHandler struct {
	profiles profile.Service
}

func NewProfileHandler(profiles profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the borrower profile, or profile_complete=false when the
// user has not filled it in yet.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	p, err := h.profiles.Get(c.UserContext(), claimsFrom(c).UserID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return utils.Success(c, fiber.Map{"profile_complete": false})
	}
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"profile_complete": true, "profile": p})
}

func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var input profile.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	p, created, err := h.profiles.Save(c.UserContext(), claimsFrom(c).UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	if created {
		return utils.Created(c, fiber.Map{"message": "Profile completed successfully!", "profile": p})
	}
	return utils.Success(c, fiber.Map{"message": "Profile updated successfully!", "profile": p})
}

// UpdateAccount edits the name and email on the user account.
func (h *ProfileHandler) UpdateAccount(c *fiber.Ctx) error {
	var input profile.AccountInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	user, err := h.profiles.UpdateAccount(c.UserContext(), claimsFrom(c).UserID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "Account updated successfully!", "user": user})
}

func (h *ProfileHandler) UploadPicture(c *fiber.Ctx) error {
	upload, done, err := formUpload(c, "profile_picture")
	if err != nil {
		return utils.Error(c, err)
	}
	defer done()

	p, err := h.profiles.SetPicture(c.UserContext(), claimsFrom(c).UserID, upload)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "Profile picture updated.", "profile": p})
}

package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"marketapi/internal/service"
)

// UploadMedia godoc
// @Summary Upload an image (SELLER)
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image, at most 2MB"
// @Param productId formData string false "Associated product"
// @Success 201 {object} model.Media
// @Router /api/media [post]
func UploadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		m, err := svc.Upload(c.UserContext(), actor, service.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		}, c.FormValue("productId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func GetMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(m)
	}
}

// GetMediaFile streams the stored bytes with the recorded content type.
func GetMediaFile(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		fc, err := svc.File(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, fc.ContentType)
		c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote(fc.FileName))
		// fasthttp closes the stream once sent
		return c.SendStream(fc.Body, int(fc.Size))
	}
}

func ListProductMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListByProduct(c.UserContext(), c.Params("productId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

func ListMyMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		items, err := svc.ListMine(c.UserContext(), actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

func DeleteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		if err := svc.Delete(c.UserContext(), actor, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "Media deleted successfully"})
	}
}

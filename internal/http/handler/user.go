package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/service"
)

// RegisterUser godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} service.AuthResult
// @Router /api/users/register [post]
func RegisterUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if ok, err := bind(c, &in); !ok {
			return err
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// LoginUser godoc
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} service.AuthResult
// @Router /api/users/login [post]
func LoginUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.LoginInput
		if ok, err := bind(c, &in); !ok {
			return err
		}
		res, err := svc.Login(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func GetMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		u, err := svc.Me(c.UserContext(), actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

func UpdateMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		var in service.UpdateUserInput
		if ok, err := bind(c, &in); !ok {
			return err
		}
		u, err := svc.UpdateMe(c.UserContext(), actor, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

func DeleteMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		if err := svc.DeleteMe(c.UserContext(), actor); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messagePayload{Message: "User deleted successfully"})
	}
}

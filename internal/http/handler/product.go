package handler

import (
	"github.com/gofiber/fiber/v2"

	"marketapi/internal/service"
)

// CreateProduct godoc
// @Summary Create a product (SELLER)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} model.Product
// @Router /api/products [post]
func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		var in service.CreateProductInput
		if ok, err := bind(c, &in); !ok {
			return err
		}
		p, err := svc.Create(c.UserContext(), actor, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

func ListMyProducts(svc service.ProductService) fiber.Handler {
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

func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProduct godoc
// @Summary Partially update a product (owner only)
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Router /api/products/{id} [put]
func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok, err := currentActor(c)
		if !ok {
			return err
		}
		id, ok, err := pathID(c, "id")
		if !ok {
			return err
		}
		var in service.UpdateProductInput
		if ok, err := bind(c, &in); !ok {
			return err
		}
		p, err := svc.Update(c.UserContext(), actor, id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

func DeleteProduct(svc service.ProductService) fiber.Handler {
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
		return c.JSON(messagePayload{Message: "Product deleted successfully"})
	}
}

package serverutils

import "github.com/gofiber/fiber/v2"

func ErrorResponse(message string) fiber.Map {
	return fiber.Map{"message": message}
}

func ValidationErrorResponse(details []ErrorDetail) fiber.Map {
	return fiber.Map{
		"message": "validation failed",
		"errors":  details,
	}
}

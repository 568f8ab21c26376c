package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every endpoint answers with. Data is omitted
// on errors so failure payloads stay minimal.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess answers 200 with the standard envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus answers with the standard envelope and an explicit
// status code, for handlers that create resources.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError answers with a failure envelope carrying only the message.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "request failed"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}

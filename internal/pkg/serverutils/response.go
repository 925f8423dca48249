package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator/v10"
)

type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) ApiResponse {
	return ApiResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// AppError is a service-level error carrying its HTTP status. Services return
// it when the failure maps to a specific client-visible condition; anything
// else surfaces as a 500 through the middleware.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct validation and converts failures into a 422
// AppError, so malformed requests never reach a service.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return NewAppError(fiber.StatusUnprocessableEntity,
				"validation failed on field '"+f.Field()+"' ("+f.Tag()+")")
		}
		return NewAppError(fiber.StatusUnprocessableEntity, "validation failed")
	}
	return nil
}

// ErrorHandlerMiddleware converts returned errors into the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			return ctx.Status(appErr.Status).JSON(ApiResponse{
				Success: false,
				Message: appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ApiResponse{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ApiResponse{
			Success: false,
			Message: "internal server error",
		})
	}
}

package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code      int         `json:"code"`                 // 0 on success, HTTP status otherwise
	Message   string      `json:"message"`              // human readable
	ErrorCode string      `json:"error_code,omitempty"` // AppError code on failure
	Data      interface{} `json:"data,omitempty"`
}

// SuccessResponse replies 200 with data.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage replies 200 with a custom message.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created replies 201 with data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse replies with httpStatus and an error envelope.
func ErrorResponse(c *gin.Context, httpStatus int, errorCode, message string) {
	c.JSON(httpStatus, Response{
		Code:      httpStatus,
		Message:   message,
		ErrorCode: errorCode,
	})
}

// Fail translates a service error into a response. AppErrors carry their own
// status and message; anything else becomes an opaque 500.
func Fail(c *gin.Context, err error) {
	code := ErrorCode(err)
	if code == "" {
		code = ErrCodeStorageFailure
	}

	message := "internal server error"
	var appErr *AppError
	if errors.As(err, &appErr) && code != ErrCodeStorageFailure {
		message = appErr.Message
	}

	ErrorResponse(c, HTTPStatus(code), code, message)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidArgument, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, ErrCodeRateLimited, message)
}

// InternalServerError 500
func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeStorageFailure, message)
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"travelo/shared/constant"
	"travelo/shared/failure"
	"travelo/shared/logger"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error  *string      `json:"error,omitempty"`
	Kind   failure.Kind `json:"kind,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload interface{}) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError maps err to its status code. Messages of unexpected errors stay in the logs,
// clients only see that the server failed.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	var fail *failure.Failure
	if !errors.As(err, &fail) || code >= http.StatusInternalServerError {
		logger.ErrorWithStack(err)

		message := constant.ResponseErrorInternal
		response(writer, code, Error{Error: &message})

		return
	}

	message := fail.Message
	response(writer, code, Error{Error: &message, Kind: fail.Kind, Reason: fail.Reason})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}

package utils

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// MiddlewareHelpers builds the router middleware every module shares.
type MiddlewareHelpers interface {
	CommonMetadataMiddleware(service string) message.HandlerMiddleware
}

// NewMiddlewareHelper returns the standard middleware set.
func NewMiddlewareHelper() MiddlewareHelpers { return &middlewareHelpers{} }

type middlewareHelpers struct{}

// CommonMetadataMiddleware stamps the handling service on message metadata and
// copies the correlation id into the handler context so services can log it
// without touching the message.
func (middlewareHelpers) CommonMetadataMiddleware(service string) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msg.Metadata.Set("handled_by", service)

			correlationID := middleware.MessageCorrelationID(msg)
			msg.SetContext(WithCorrelationID(msg.Context(), correlationID))

			produced, err := h(msg)
			for _, out := range produced {
				if middleware.MessageCorrelationID(out) == "" {
					middleware.SetCorrelationID(correlationID, out)
				}
			}
			return produced, err
		}
	}
}

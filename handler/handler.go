// Package handler adapts API Gateway proxy events to the skill's session
// controller: signature verification, envelope decoding, and error-to-status
// mapping live here and nowhere else.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"clothcheck-skill/internal/cek"
	"clothcheck-skill/internal/usecase"
)

// Dispatcher is the session controller surface the handler needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *cek.RequestEnvelope) (*cek.ResponseEnvelope, error)
}

// RequestVerifier checks the platform signature over the raw request body.
type RequestVerifier interface {
	Verify(signatureB64 string, body []byte) error
}

type Handler struct {
	controller  Dispatcher
	verifier    RequestVerifier
	extensionID string
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(controller Dispatcher, verifier RequestVerifier, extensionID string) (*Handler, error) {
	if controller == nil {
		return nil, errors.New("handler: controller must not be nil")
	}
	if verifier == nil {
		return nil, errors.New("handler: verifier must not be nil")
	}
	if strings.TrimSpace(extensionID) == "" {
		return nil, errors.New("handler: extension id must not be empty")
	}
	return &Handler{controller: controller, verifier: verifier, extensionID: extensionID}, nil
}

// Handle processes one conversational turn. On any failure no session
// attributes are returned; the platform keeps the previous turn's bag.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, "x-correlation-id")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := slog.With("correlationId", correlationID)

	body := []byte(event.Body)
	if err := h.verifier.Verify(headerValue(event.Headers, cek.SignatureHeader), body); err != nil {
		log.Warn("request signature rejected", "err", err)
		return errorResult(http.StatusUnauthorized, usecase.ErrorInvalidSignature, correlationID), nil
	}

	var req cek.RequestEnvelope
	if err := json.Unmarshal(body, &req); err != nil {
		log.Warn("cannot decode request envelope", "err", err)
		return errorResult(http.StatusBadRequest, usecase.ErrorInvalidEnvelope, correlationID), nil
	}
	if req.Context.System.Application.ApplicationID != h.extensionID {
		log.Warn("extension id mismatch", "got", req.Context.System.Application.ApplicationID)
		return errorResult(http.StatusUnauthorized, usecase.ErrorInvalidSignature, correlationID), nil
	}

	log.Info("handling turn", "requestType", req.Request.Type, "intent", req.Request.Intent.Name)

	resp, err := h.controller.Dispatch(ctx, &req)
	if err != nil {
		status, code := classify(err)
		log.Error("turn failed", "code", code, "err", err)
		return errorResult(status, code, correlationID), nil
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		log.Error("cannot encode response envelope", "err", err)
		return errorResult(http.StatusInternalServerError, usecase.ErrorInternal, correlationID), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders(correlationID),
		Body:       string(payload),
	}, nil
}

// classify maps a turn failure onto a transport status. Routing failures
// are distinct from dependency failures by contract.
func classify(err error) (int, usecase.ErrorCode) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, usecase.ErrorInternal
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidEnvelope:
		return http.StatusBadRequest, ucErr.Code
	case usecase.ErrorInvalidSignature:
		return http.StatusUnauthorized, ucErr.Code
	case usecase.ErrorRouting:
		return http.StatusUnprocessableEntity, ucErr.Code
	case usecase.ErrorDependency:
		return http.StatusBadGateway, ucErr.Code
	default:
		return http.StatusInternalServerError, usecase.ErrorInternal
	}
}

func errorResult(status int, code usecase.ErrorCode, correlationID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: string(code)})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(correlationID),
		Body:       string(body),
	}
}

func responseHeaders(correlationID string) map[string]string {
	return map[string]string{
		"Content-Type":     "application/json",
		"X-Correlation-Id": correlationID,
	}
}

// headerValue performs a case-insensitive header lookup; API Gateway does
// not normalize header casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

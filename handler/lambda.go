package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Handle serves the chat API from API Gateway proxy events. Static assets
// are not served on this path.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := headerValue(req.Headers, correlationHeader)
	if id == "" {
		id = newUUID()
	}
	ctx = withCorrelationID(ctx, id)

	var (
		status  int
		payload any
	)
	switch {
	case req.HTTPMethod == http.MethodOptions:
		return proxyResponse(http.StatusNoContent, "", id), nil
	case req.Path == "/api/chat" && req.HTTPMethod == http.MethodPost:
		body, ok := requestBody(req)
		if !ok {
			status, payload = http.StatusBadRequest, errorResponse{Error: msgInvalidBody}
			break
		}
		if int64(len(body)) > h.maxBodyBytes {
			status, payload = http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge}
			break
		}
		status, payload = h.handleChat(ctx, body)
	case req.Path == "/api/health" && req.HTTPMethod == http.MethodGet:
		status, payload = h.handleHealth()
	default:
		status, payload = http.StatusNotFound, errorResponse{Error: msgNotFound}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return proxyResponse(http.StatusInternalServerError, `{"error":"`+msgProcessing+`"}`, id), nil
	}
	return proxyResponse(status, string(b), id), nil
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, bool) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), true
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, false
	}
	return b, true
}

func proxyResponse(status int, body, id string) events.APIGatewayProxyResponse {
	headers := corsHeaders()
	headers[correlationHeader] = id
	if body != "" {
		headers["Content-Type"] = "application/json"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

// headerValue looks up name case-insensitively; API Gateway passes headers
// through as the client sent them.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type recommendResult struct {
	*Report
	Error string `json:"error,omitempty"`
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	catalog, err := DefaultCatalog()
	if err != nil {
		return errResp(500, err.Error())
	}

	inv, cfg, err := ParseRequest(catalog, body)
	if err != nil {
		return errResp(400, err.Error())
	}

	planner, err := NewPlanner(catalog, cfg)
	if err != nil {
		return errResp(400, err.Error())
	}

	report, err := planner.Run(ctx, inv)
	var infeasible *InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		return jsonResp(200, recommendResult{Report: report, Error: err.Error()})
	case err != nil:
		return errResp(500, err.Error())
	}
	return jsonResp(200, recommendResult{Report: report})
}

func jsonResp(code int, v any) (events.LambdaFunctionURLResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return errResp(500, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	_ = setupLogger(os.Stderr, os.Getenv("POTIONFORGE_LOG_LEVEL"), "json")
	slog.Info("lambda starting")
	lambda.Start(handler)
}

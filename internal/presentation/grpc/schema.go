package grpc

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaFiles maps RPC names to the payload schema they are checked against.
var schemaFiles = map[string]string{
	"CheckEligibility":     "schemas/check_eligibility.json",
	"SubmitApplication":    "schemas/submit_application.json",
	"CreateOffer":          "schemas/create_offer.json",
	"DeclineOffer":         "schemas/decline_offer.json",
	"EvaluateVehicle":      "schemas/evaluate_vehicle.json",
	"UpdateVehiclePricing": "schemas/update_vehicle_pricing.json",
}

// RequestValidator checks decoded request payloads against JSON schemas.
type RequestValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewRequestValidator compiles the embedded schemas.
func NewRequestValidator() (*RequestValidator, error) {
	v := &RequestValidator{schemas: make(map[string]*gojsonschema.Schema, len(schemaFiles))}
	for method, file := range schemaFiles {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		v.schemas[FullMethod(method)] = schema
	}
	return v, nil
}

// Validate checks req for fullMethod. Methods without a schema always pass.
func (v *RequestValidator) Validate(fullMethod string, req interface{}) error {
	schema, ok := v.schemas[fullMethod]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(req))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid request: %s", strings.Join(errs, "; "))
	}
	return nil
}

// UnaryInterceptor rejects payloads that fail their schema with InvalidArgument.
func (v *RequestValidator) UnaryInterceptor() grpclib.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpclib.UnaryServerInfo,
		handler grpclib.UnaryHandler,
	) (interface{}, error) {
		if err := v.Validate(info.FullMethod, req); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return handler(ctx, req)
	}
}

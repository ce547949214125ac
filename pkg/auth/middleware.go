package auth

import (
	"context"
	"slices"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ContextWithClaims returns a new context with the given Claims attached.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts Claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// InterceptorOptions controls which methods bypass or soften authentication.
type InterceptorOptions struct {
	// SkipMethods are served without looking at credentials (health, reflection).
	SkipMethods []string
	// OptionalMethods accept anonymous callers; a presented token must still be valid.
	OptionalMethods []string
}

// UnaryAuthInterceptor returns a gRPC unary server interceptor for JWT auth.
func UnaryAuthInterceptor(jwtService *JWTService, opts InterceptorOptions) grpc.UnaryServerInterceptor {
	skipSet := make(map[string]struct{}, len(opts.SkipMethods))
	for _, m := range opts.SkipMethods {
		skipSet[m] = struct{}{}
	}
	optionalSet := make(map[string]struct{}, len(opts.OptionalMethods))
	for _, m := range opts.OptionalMethods {
		optionalSet[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, skip := skipSet[info.FullMethod]; skip {
			return handler(ctx, req)
		}
		_, optional := optionalSet[info.FullMethod]

		tokenString := bearerToken(ctx)
		if tokenString == "" {
			if optional {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		return handler(ContextWithClaims(ctx, claims), req)
	}
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	authHeader := md.Get("authorization")
	if len(authHeader) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader[0], "Bearer "))
}

// RequireRole returns a gRPC unary server interceptor that checks for one of
// the given roles on the listed methods. Other methods pass through.
func RequireRole(methods []string, roles ...string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !slices.Contains(methods, info.FullMethod) {
			return handler(ctx, req)
		}

		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "no claims in context")
		}

		for _, required := range roles {
			if claims.HasRole(required) {
				return handler(ctx, req)
			}
		}

		return nil, status.Errorf(codes.PermissionDenied, "required role(s): %v", roles)
	}
}

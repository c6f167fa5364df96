// Package grpcserver exposes token verification to other services over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"time"

	"gamedominate/apperrors"
	"gamedominate/auth"
	"gamedominate/repositories"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	IdentityServiceName = "gamedominate.identity.v1.Identity"
	VerifyTokenMethod   = "/" + IdentityServiceName + "/VerifyToken"
	WhoAmIMethod        = "/" + IdentityServiceName + "/WhoAmI"
)

// IdentityServer answers questions about bearer tokens. Messages are
// well-known protobuf types so no generated code is needed.
type IdentityServer interface {
	// VerifyToken reports whether the token is valid and, if so, whose it is.
	VerifyToken(ctx context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error)
	// WhoAmI returns the account of the authenticated caller.
	WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error)
}

type identityServer struct {
	tokens *auth.TokenService
	users  repositories.UserRepository
}

func NewIdentityServer(tokens *auth.TokenService, users repositories.UserRepository) IdentityServer {
	return &identityServer{tokens: tokens, users: users}
}

func (s *identityServer) VerifyToken(_ context.Context, token *wrapperspb.StringValue) (*structpb.Struct, error) {
	claims, err := s.tokens.Verify(token.GetValue())
	if err != nil {
		return structpb.NewStruct(map[string]any{"valid": false, "error": err.Error()})
	}
	fields := map[string]any{
		"valid": true,
		"id":    float64(claims.ID),
		"email": claims.Email,
		"role":  claims.Role.String(),
	}
	if claims.ExpiresAt != nil {
		fields["expires_at"] = claims.ExpiresAt.Time.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(fields)
}

func (s *identityServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	user, err := s.users.FindByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, status.Errorf(codes.NotFound, "user %d not found", id.ID)
		}
		return nil, status.Error(codes.Internal, apperrors.InternalMessage)
	}
	return structpb.NewStruct(map[string]any{
		"id":       float64(user.ID),
		"email":    user.Email,
		"username": user.Username,
		// The token's role, which is what the API enforces until it expires.
		"role": id.Role.String(),
	})
}

// RegisterIdentityServer adds srv to s.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&identityServiceDesc, srv)
}

var identityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "VerifyToken", Handler: verifyTokenHandler},
		{MethodName: "WhoAmI", Handler: whoAmIHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamedominate/identity/v1/identity.proto",
}

func verifyTokenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).VerifyToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: VerifyTokenMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).VerifyToken(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func whoAmIHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).WhoAmI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WhoAmIMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).WhoAmI(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// IdentityClient calls the identity service.
type IdentityClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityClient(cc grpc.ClientConnInterface) *IdentityClient {
	return &IdentityClient{cc: cc}
}

func (c *IdentityClient) VerifyToken(ctx context.Context, token string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, VerifyTokenMethod, wrapperspb.String(token), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IdentityClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WhoAmIMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

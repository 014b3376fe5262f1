package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "focustank.v1.TankService"

const (
	MethodRegisterUser = "/" + ServiceName + "/RegisterUser"
	MethodGetSalt      = "/" + ServiceName + "/GetSalt"
	MethodLogin        = "/" + ServiceName + "/Login"
	MethodRefreshToken = "/" + ServiceName + "/RefreshToken"
	MethodFetchAll     = "/" + ServiceName + "/FetchAll"
	MethodReplaceAll   = "/" + ServiceName + "/ReplaceAll"
)

// PublicMethods need no access token.
var PublicMethods = map[string]bool{
	MethodRegisterUser: true,
	MethodGetSalt:      true,
	MethodLogin:        true,
	MethodRefreshToken: true,
}

type TankServiceServer interface {
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	FetchAll(context.Context, *FetchAllRequest) (*FetchAllResponse, error)
	ReplaceAll(context.Context, *ReplaceAllRequest) (*ReplaceAllResponse, error)
}

// UnimplementedTankServiceServer can be embedded to satisfy the interface
// for partial implementations.
type UnimplementedTankServiceServer struct{}

func (UnimplementedTankServiceServer) RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterUser not implemented")
}
func (UnimplementedTankServiceServer) GetSalt(context.Context, *GetSaltRequest) (*GetSaltResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSalt not implemented")
}
func (UnimplementedTankServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedTankServiceServer) RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedTankServiceServer) FetchAll(context.Context, *FetchAllRequest) (*FetchAllResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchAll not implemented")
}
func (UnimplementedTankServiceServer) ReplaceAll(context.Context, *ReplaceAllRequest) (*ReplaceAllResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ReplaceAll not implemented")
}

func RegisterTankServiceServer(s grpc.ServiceRegistrar, srv TankServiceServer) {
	s.RegisterService(&TankServiceDesc, srv)
}

// unary builds a method handler for one request type.
func unary[Req any, Resp any](method string, call func(TankServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TankServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TankServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var TankServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterUser", Handler: unary(MethodRegisterUser, TankServiceServer.RegisterUser)},
		{MethodName: "GetSalt", Handler: unary(MethodGetSalt, TankServiceServer.GetSalt)},
		{MethodName: "Login", Handler: unary(MethodLogin, TankServiceServer.Login)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, TankServiceServer.RefreshToken)},
		{MethodName: "FetchAll", Handler: unary(MethodFetchAll, TankServiceServer.FetchAll)},
		{MethodName: "ReplaceAll", Handler: unary(MethodReplaceAll, TankServiceServer.ReplaceAll)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "focustank/v1/tank.proto",
}

type TankServiceClient interface {
	RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error)
	GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error)
	FetchAll(ctx context.Context, in *FetchAllRequest, opts ...grpc.CallOption) (*FetchAllResponse, error)
	ReplaceAll(ctx context.Context, in *ReplaceAllRequest, opts ...grpc.CallOption) (*ReplaceAllResponse, error)
}

type tankServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTankServiceClient(cc grpc.ClientConnInterface) TankServiceClient {
	return &tankServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *tankServiceClient) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c.cc, MethodRegisterUser, in, opts)
}

func (c *tankServiceClient) GetSalt(ctx context.Context, in *GetSaltRequest, opts ...grpc.CallOption) (*GetSaltResponse, error) {
	return invoke[GetSaltResponse](ctx, c.cc, MethodGetSalt, in, opts)
}

func (c *tankServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *tankServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *tankServiceClient) FetchAll(ctx context.Context, in *FetchAllRequest, opts ...grpc.CallOption) (*FetchAllResponse, error) {
	return invoke[FetchAllResponse](ctx, c.cc, MethodFetchAll, in, opts)
}

func (c *tankServiceClient) ReplaceAll(ctx context.Context, in *ReplaceAllRequest, opts ...grpc.CallOption) (*ReplaceAllResponse, error) {
	return invoke[ReplaceAllResponse](ctx, c.cc, MethodReplaceAll, in, opts)
}

package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/common"
)

/*************
 * Fake api client
 *************/

type fakeAPI struct {
	// inputs captured
	lastRefreshTokenReq *api.RefreshTokenRequest
	lastGetSaltReq      *api.GetSaltRequest
	lastLoginReq        *api.LoginRequest
	lastRegisterReq     *api.RegisterUserRequest
	lastFetchReq        *api.FetchAllRequest
	lastReplaceReq      *api.ReplaceAllRequest

	// outputs preset
	refreshTokenResp *api.RefreshTokenResponse
	refreshTokenErr  error

	getSaltResp *api.GetSaltResponse
	getSaltErr  error

	loginResp *api.LoginResponse
	loginErr  error

	registerErr error

	fetchResp *api.FetchAllResponse
	fetchErr  error

	replaceErr error
}

func (f *fakeAPI) RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.RefreshTokenResponse, error) {
	f.lastRefreshTokenReq = in
	return f.refreshTokenResp, f.refreshTokenErr
}
func (f *fakeAPI) GetSalt(ctx context.Context, in *api.GetSaltRequest, opts ...grpc.CallOption) (*api.GetSaltResponse, error) {
	f.lastGetSaltReq = in
	return f.getSaltResp, f.getSaltErr
}
func (f *fakeAPI) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.LoginResponse, error) {
	f.lastLoginReq = in
	return f.loginResp, f.loginErr
}
func (f *fakeAPI) RegisterUser(ctx context.Context, in *api.RegisterUserRequest, opts ...grpc.CallOption) (*api.RegisterUserResponse, error) {
	f.lastRegisterReq = in
	return &api.RegisterUserResponse{}, f.registerErr
}
func (f *fakeAPI) FetchAll(ctx context.Context, in *api.FetchAllRequest, opts ...grpc.CallOption) (*api.FetchAllResponse, error) {
	f.lastFetchReq = in
	return f.fetchResp, f.fetchErr
}
func (f *fakeAPI) ReplaceAll(ctx context.Context, in *api.ReplaceAllRequest, opts ...grpc.CallOption) (*api.ReplaceAllResponse, error) {
	f.lastReplaceReq = in
	return &api.ReplaceAllResponse{Stored: len(in.Items)}, f.replaceErr
}

type fakeHealth struct {
	resp *healthpb.HealthCheckResponse
	err  error
}

func (f *fakeHealth) Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error) {
	return f.resp, f.err
}
func (f *fakeHealth) List(ctx context.Context, in *healthpb.HealthListRequest, opts ...grpc.CallOption) (*healthpb.HealthListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "list")
}
func (f *fakeHealth) Watch(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[healthpb.HealthCheckResponse], error) {
	return nil, status.Error(codes.Unimplemented, "watch")
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	f := &fakeAPI{
		refreshTokenResp: &api.RefreshTokenResponse{AccessToken: "A2", RefreshToken: "R2"},
	}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodFetchAll, nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
	access, refresh := c.tokens()
	require.Equal(t, "A2", access)
	require.Equal(t, "R2", refresh)
	require.Equal(t, "R1", f.lastRefreshTokenReq.RefreshToken)
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := &fakeAPI{}
	c := &GRPCClient{client: f, accessToken: "A1"}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodFetchAll, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Nil(t, f.lastRefreshTokenReq)
}

func TestInterceptor_RefreshFailureIsReturned(t *testing.T) {
	f := &fakeAPI{refreshTokenErr: status.Error(codes.Unauthenticated, "refresh expired")}
	c := &GRPCClient{client: f, accessToken: "A1", refreshToken: "R1"}

	calls := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		calls++
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), api.MethodReplaceAll, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestInterceptor_IgnoresOtherErrors(t *testing.T) {
	c := &GRPCClient{accessToken: "X", refreshToken: "R"}
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Internal, "boom")
	}
	require.Error(t, c.accessTokenInterceptor(context.Background(), api.MethodFetchAll, nil, nil, nil, invoker))

	invoker = func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, "some other reason")
	}
	require.Error(t, c.accessTokenInterceptor(context.Background(), api.MethodFetchAll, nil, nil, nil, invoker))
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), common.ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.PermissionDenied, "x")), common.ErrUnauthorized)
	require.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x")), common.ErrTransport)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x")), common.ErrTransport)
	require.ErrorIs(t, c.mapError(status.Error(codes.AlreadyExists, "x")), common.ErrUserExists)
	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

/*************
 * Ping tests
 *************/

func TestPing_Serving(t *testing.T) {
	c := &GRPCClient{health: &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}}}
	require.NoError(t, c.Ping(context.Background()))
}

func TestPing_NotServing(t *testing.T) {
	c := &GRPCClient{health: &fakeHealth{resp: &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}}}
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrTransport)
}

func TestPing_MapsRPCError(t *testing.T) {
	c := &GRPCClient{health: &fakeHealth{err: status.Error(codes.Unavailable, "down")}, timeout: time.Second}
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrTransport)
}

/*************
 * GetSalt / Login / Register tests
 *************/

func TestRegister(t *testing.T) {
	f := &fakeAPI{}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Register(context.Background(), "alice", []byte("s"), []byte("v")))
	require.Equal(t, "alice", f.lastRegisterReq.Username)
	require.Equal(t, []byte("v"), f.lastRegisterReq.Verifier)

	f.registerErr = status.Error(codes.AlreadyExists, "taken")
	require.ErrorIs(t, c.Register(context.Background(), "alice", nil, nil), common.ErrUserExists)
}

func TestGetSalt(t *testing.T) {
	f := &fakeAPI{getSaltResp: &api.GetSaltResponse{Salt: []byte("salt")}}
	c := &GRPCClient{client: f, timeout: time.Second}
	salt, err := c.GetSalt(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, []byte("salt"), salt)
	require.Equal(t, "bob", f.lastGetSaltReq.Username)
}

func TestLogin_StoresTokens(t *testing.T) {
	f := &fakeAPI{loginResp: &api.LoginResponse{UserID: "u1", AccessToken: "A", RefreshToken: "R"}}
	c := &GRPCClient{client: f}

	userID, err := c.Login(context.Background(), "bob", []byte("k"))
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
	access, refresh := c.tokens()
	require.Equal(t, "A", access)
	require.Equal(t, "R", refresh)

	c.Logout()
	access, refresh = c.tokens()
	require.Empty(t, access)
	require.Empty(t, refresh)
}

func TestLogin_MapsError(t *testing.T) {
	f := &fakeAPI{loginErr: status.Error(codes.Unauthenticated, "bad")}
	c := &GRPCClient{client: f}
	_, err := c.Login(context.Background(), "bob", []byte("k"))
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

/*************
 * FetchAll / ReplaceAll tests
 *************/

func TestReplaceAllAndFetchAll(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []collection.CollectedItem{{ID: "x", ItemID: "koi", Rarity: catalog.Rare, Size: catalog.Small,
		Name: "Koi", CaughtAt: now, ModifiedAt: now, Visible: true}}

	f := &fakeAPI{}
	c := &GRPCClient{client: f}
	require.NoError(t, c.ReplaceAll(context.Background(), "u1", items))
	require.Equal(t, "u1", f.lastReplaceReq.UserID)
	require.Len(t, f.lastReplaceReq.Items, 1)
	require.Equal(t, "rare", f.lastReplaceReq.Items[0].Rarity)

	f.fetchResp = &api.FetchAllResponse{Items: f.lastReplaceReq.Items}
	got, err := c.FetchAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestFetchAll_MapsError(t *testing.T) {
	f := &fakeAPI{fetchErr: status.Error(codes.Unavailable, "x")}
	c := &GRPCClient{client: f}
	_, err := c.FetchAll(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrTransport)
}

func TestFetchAll_BadPayload(t *testing.T) {
	f := &fakeAPI{fetchResp: &api.FetchAllResponse{Items: []api.Item{{ID: "x", Rarity: "mythic", Size: "small"}}}}
	c := &GRPCClient{client: f}
	_, err := c.FetchAll(context.Background(), "u1")
	require.ErrorContains(t, err, "decode remote collection")
}

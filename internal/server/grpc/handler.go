package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/focustank/internal/api"
	"github.com/dmitrijs2005/focustank/internal/common"
)

// toStatus maps service errors to gRPC codes. Internal details are not
// sent to the client.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrUserExists):
		return status.Error(codes.AlreadyExists, common.ErrUserExists.Error())
	case errors.Is(err, common.ErrInvalidName), errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, common.ErrUnauthorized.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	default:
		return status.Error(codes.Internal, common.ErrInternal.Error())
	}
}

// authorizedUser returns the token's user and rejects requests naming a
// different one.
func authorizedUser(ctx context.Context, requested string) (string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	if requested != "" && requested != userID {
		return "", status.Error(codes.PermissionDenied, "user mismatch")
	}
	return userID, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *api.RegisterUserRequest) (*api.RegisterUserResponse, error) {
	u, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.RegisterUserResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *api.GetSaltRequest) (*api.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LoginResponse{UserID: tokens.UserID, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) FetchAll(ctx context.Context, req *api.FetchAllRequest) (*api.FetchAllResponse, error) {
	userID, err := authorizedUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	items, err := s.collections.FetchAll(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.FetchAllResponse{Items: items}, nil
}

func (s *GRPCServer) ReplaceAll(ctx context.Context, req *api.ReplaceAllRequest) (*api.ReplaceAllResponse, error) {
	userID, err := authorizedUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	n, err := s.collections.ReplaceAll(ctx, userID, req.Items)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ReplaceAllResponse{Stored: n}, nil
}

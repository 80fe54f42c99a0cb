package authtest

import (
	"context"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Refresh statuses on the wire.
const (
	StatusOK                    = "ok"
	StatusTokenAlreadyRefreshed = "tokenAlreadyRefreshed"
	StatusRefreshTokenExpired   = "refreshTokenExpired"
)

func (s *Server) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := req.GetFields()["email"].GetStringValue()
	password := req.GetFields()["password"].GetStringValue()

	s.mu.Lock()
	acc, ok := s.byEmail[email]
	s.mu.Unlock()

	if !ok || !verifyPassword(password, acc.salt, acc.hash) {
		s.logger.Info(ctx, "sign in rejected", "email", email)
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	return s.loggedIn(ctx, acc)
}

func (s *Server) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	email, name, password := f["email"].GetStringValue(), f["name"].GetStringValue(), f["password"].GetStringValue()
	if email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	acc, err := newAccount(email, name, password)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	s.mu.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mu.Unlock()
		return nil, status.Error(codes.AlreadyExists, "email already registered")
	}
	s.addLocked(acc)
	s.mu.Unlock()

	s.logger.Info(ctx, "Registered", "email", email)
	return s.loggedIn(ctx, acc)
}

func (s *Server) GetUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	userID, _ := ctx.Value(UserIDKey).(string)

	s.mu.Lock()
	acc, ok := s.byID[userID]
	s.mu.Unlock()
	if !ok {
		return nil, status.Error(codes.NotFound, common.ErrorNotFound.Error())
	}

	return structpb.NewStruct(map[string]any{"user": userFields(acc)})
}

// Logout revokes the caller's refresh token.
func (s *Server) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	token := incomingValue(ctx, common.RefreshTokenHeaderName)

	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	return &structpb.Struct{}, nil
}

// Refresh rotates the refresh token and issues a new access token.
func (s *Server) Refresh(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	token := incomingValue(ctx, common.RefreshTokenHeaderName)
	now := s.clock.Now()

	s.mu.Lock()
	rec, ok := s.sessions[token]
	switch {
	case !ok || !now.Before(rec.expiresAt):
		delete(s.sessions, token)
		s.mu.Unlock()
		return refreshStatus(StatusRefreshTokenExpired)

	case !rec.rotatedAt.IsZero():
		fresh := now.Sub(rec.rotatedAt) < RotationGrace
		s.mu.Unlock()
		if fresh {
			return refreshStatus(StatusTokenAlreadyRefreshed)
		}
		return refreshStatus(StatusRefreshTokenExpired)
	}
	rec.rotatedAt = now
	acc := s.byID[rec.userID]
	s.mu.Unlock()

	info, err := s.issue(ctx, acc)
	if err != nil {
		return nil, err
	}
	info["status"] = StatusOK
	return structpb.NewStruct(info)
}

func (s *Server) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (s *Server) loggedIn(ctx context.Context, acc *account) (*structpb.Struct, error) {
	info, err := s.issue(ctx, acc)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"user":       userFields(acc),
		"token_info": info["token_info"],
	})
}

// issue creates an access token and a refresh token for acc. The refresh
// token is sent in the set-refresh-token header.
func (s *Server) issue(ctx context.Context, acc *account) (map[string]any, error) {
	now := s.clock.Now()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)

	access, err := GenerateToken(acc.id, s.secret, accessExp)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	refresh := uuid.NewString()
	s.mu.Lock()
	s.sessions[refresh] = &refreshRecord{userID: acc.id, expiresAt: refreshExp}
	s.mu.Unlock()

	if err := grpc.SetHeader(ctx, metadata.Pairs(common.SetRefreshTokenHeaderName, refresh)); err != nil {
		return nil, err
	}

	tokenInfo := map[string]any{
		"access_token":             access,
		"refresh_token_expires_in": refreshExp.Unix(),
	}
	if !s.omitExpiresIn {
		tokenInfo["expires_in"] = accessExp.Unix()
	}
	return map[string]any{"token_info": tokenInfo}, nil
}

func newAccount(email, name, password string) (*account, error) {
	salt, hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &account{id: uuid.NewString(), email: email, name: name, salt: salt, hash: hash}, nil
}

func (s *Server) addLocked(acc *account) {
	s.byEmail[acc.email] = acc
	s.byID[acc.id] = acc
}

func userFields(acc *account) map[string]any {
	return map[string]any{
		"id":    acc.id,
		"email": acc.email,
		"name":  acc.name,
	}
}

func refreshStatus(st string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": st})
}

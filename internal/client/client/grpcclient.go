package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service the client talks to.
const ServiceName = common.AuthServiceName

const (
	methodSignIn  = "/" + ServiceName + "/SignIn"
	methodSignUp  = "/" + ServiceName + "/SignUp"
	methodGetUser = "/" + ServiceName + "/GetUser"
	methodLogout  = "/" + ServiceName + "/Logout"
	methodRefresh = "/" + ServiceName + "/Refresh"
	methodPing    = "/" + ServiceName + "/Ping"
)

// TokenSource returns the current access token, "" when logged out.
type TokenSource func() string

// GRPCClient implements Client over unary gRPC calls carrying
// google.protobuf.Struct messages.
type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	tokens      TokenSource
	jar         CookieJar
	jarMu       sync.Mutex
	jarGen      uint64
	timeout     time.Duration
	dialOpts    []grpc.DialOption
	log         logging.Logger
}

// Option configures a GRPCClient.
type Option func(*GRPCClient)

// WithTokenSource sets where the access token for outgoing calls comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *GRPCClient) { c.tokens = ts }
}

// WithCookieJar sets the refresh token store.
func WithCookieJar(jar CookieJar) Option {
	return func(c *GRPCClient) { c.jar = jar }
}

// WithTimeout bounds every call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) { c.timeout = d }
}

// WithDialOptions appends extra dial options, e.g. a bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

// WithLogger sets the logger used for call tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) { c.log = l }
}

func NewGRPCClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	for _, o := range opts {
		o(c)
	}
	c.setDefaults()

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.metadataInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(c.endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (c *GRPCClient) setDefaults() {
	if c.tokens == nil {
		c.tokens = func() string { return "" }
	}
	if c.jar == nil {
		c.jar = &memoryJar{}
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
}

// metadataInterceptor stamps every call with a request id and, when the
// session holds one, the access token.
func (c *GRPCClient) metadataInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}

	requestID := uuid.NewString()
	md.Set(common.RequestIDHeaderName, requestID)
	if token := c.tokens(); token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	} else {
		md.Delete(common.AccessTokenHeaderName)
	}

	start := time.Now()
	err := invoker(metadata.NewOutgoingContext(ctx, md), method, req, reply, cc, opts...)
	c.log.Debug(ctx, "rpc", "method", method, "request_id", requestID,
		"duration", time.Since(start), "code", status.Code(err).String())
	return err
}

func (c *GRPCClient) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if req == nil {
		req = &structpb.Struct{}
	}

	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, req, resp, opts...); err != nil {
		return nil, c.mapError(err)
	}
	return resp, nil
}

// withRefreshToken attaches the stored refresh token, if any.
func (c *GRPCClient) withRefreshToken(ctx context.Context) (context.Context, error) {
	token, err := c.jar.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read refresh token: %w", err)
	}
	if token == "" {
		return ctx, nil
	}
	return metadata.AppendToOutgoingContext(ctx, common.RefreshTokenHeaderName, token), nil
}

func refreshTokenFrom(header metadata.MD) (string, bool) {
	values := header.Get(common.SetRefreshTokenHeaderName)
	if len(values) == 0 {
		return "", false
	}
	return values[len(values)-1], true
}

// jarGeneration changes every time a login or logout replaces the jar
// contents.
func (c *GRPCClient) jarGeneration() uint64 {
	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	return c.jarGen
}

// replaceRefreshToken starts a new jar generation. An empty token clears
// the jar; ok=false leaves its contents but still starts the generation.
func (c *GRPCClient) replaceRefreshToken(ctx context.Context, token string, ok bool) error {
	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	c.jarGen++
	if !ok {
		return nil
	}
	if err := c.jar.Set(ctx, token); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// keepRefreshToken stores a rotated refresh token unless a login or logout
// replaced the jar since gen was read.
func (c *GRPCClient) keepRefreshToken(ctx context.Context, header metadata.MD, gen uint64) error {
	token, ok := refreshTokenFrom(header)
	if !ok {
		return nil
	}

	c.jarMu.Lock()
	defer c.jarMu.Unlock()
	if c.jarGen != gen {
		c.log.Debug(ctx, "dropping rotated refresh token, jar was replaced")
		return nil
	}
	if err := c.jar.Set(ctx, token); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (c *GRPCClient) login(ctx context.Context, method string, fields map[string]any) (*models.LoginResult, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	var header metadata.MD
	resp, err := c.invoke(ctx, method, req, grpc.Header(&header))
	if err != nil {
		return nil, err
	}

	user := userFromStruct(resp.GetFields()["user"].GetStructValue())
	info := tokenInfoFromStruct(resp.GetFields()["token_info"].GetStructValue())
	if info == nil || info.AccessToken == "" {
		return nil, fmt.Errorf("%s: token_info: %w", method, common.ErrMalformedResponse)
	}

	token, ok := refreshTokenFrom(header)
	if err := c.replaceRefreshToken(ctx, token, ok); err != nil {
		return nil, err
	}
	return &models.LoginResult{User: user, TokenInfo: info}, nil
}

func (c *GRPCClient) SignIn(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	return c.login(ctx, methodSignIn, map[string]any{
		"email":    creds.Email,
		"password": string(creds.Password),
	})
}

func (c *GRPCClient) SignUp(ctx context.Context, form models.SignUpForm) (*models.LoginResult, error) {
	return c.login(ctx, methodSignUp, map[string]any{
		"email":    form.Email,
		"name":     form.Name,
		"password": string(form.Password),
	})
}

func (c *GRPCClient) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := c.invoke(ctx, methodGetUser, nil)
	if err != nil {
		return nil, err
	}
	return userFromStruct(resp.GetFields()["user"].GetStructValue()), nil
}

func (c *GRPCClient) Logout(ctx context.Context) error {
	ctx, err := c.withRefreshToken(ctx)
	if err != nil {
		return err
	}
	if _, err := c.invoke(ctx, methodLogout, nil); err != nil {
		return err
	}
	return c.replaceRefreshToken(ctx, "", true)
}

func (c *GRPCClient) Refresh(ctx context.Context) (*models.RefreshResult, error) {
	gen := c.jarGeneration()
	ctx, err := c.withRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	var header metadata.MD
	resp, err := c.invoke(ctx, methodRefresh, nil, grpc.Header(&header))
	if err != nil {
		return nil, err
	}

	switch s := models.RefreshStatus(resp.GetFields()["status"].GetStringValue()); s {
	case models.RefreshTokenAlreadyRefreshed, models.RefreshTokenExpired:
		return &models.RefreshResult{Status: s}, nil
	case models.RefreshOK, "":
	default:
		c.log.Warn(ctx, "unknown refresh status, treating as ok", "status", string(s))
	}

	info := tokenInfoFromStruct(resp.GetFields()["token_info"].GetStructValue())
	if info == nil || info.AccessToken == "" {
		return nil, fmt.Errorf("%s: token_info: %w", methodRefresh, common.ErrMalformedResponse)
	}
	if err := c.keepRefreshToken(ctx, header, gen); err != nil {
		return nil, err
	}
	return &models.RefreshResult{Status: models.RefreshOK, TokenInfo: info}, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	resp, err := c.invoke(ctx, methodPing, nil)
	if err != nil {
		return err
	}
	if resp.GetFields()["status"].GetStringValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func userFromStruct(s *structpb.Struct) *models.User {
	if s == nil {
		return nil
	}
	f := s.GetFields()
	return &models.User{
		ID:            f["id"].GetStringValue(),
		Email:         f["email"].GetStringValue(),
		Name:          f["name"].GetStringValue(),
		EmailVerified: f["email_verified"].GetBoolValue(),
	}
}

func tokenInfoFromStruct(s *structpb.Struct) *models.TokenInfo {
	if s == nil {
		return nil
	}
	f := s.GetFields()
	info := &models.TokenInfo{
		AccessToken:           f["access_token"].GetStringValue(),
		ExpiresIn:             int64(f["expires_in"].GetNumberValue()),
		RefreshTokenExpiresIn: int64(f["refresh_token_expires_in"].GetNumberValue()),
	}
	if info.ExpiresIn == 0 && info.AccessToken != "" {
		info.ExpiresIn = expiryFromJWT(info.AccessToken)
	}
	return info
}

// memoryJar is the fallback when no persistent jar is configured.
type memoryJar struct {
	mu    sync.Mutex
	token string
}

func (j *memoryJar) Get(context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.token, nil
}

func (j *memoryJar) Set(_ context.Context, token string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.token = token
	return nil
}

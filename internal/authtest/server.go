package authtest

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsession/internal/common"
	"github.com/dmitrijs2005/gophsession/internal/logging"
	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	methodSignIn  = "/" + common.AuthServiceName + "/SignIn"
	methodSignUp  = "/" + common.AuthServiceName + "/SignUp"
	methodGetUser = "/" + common.AuthServiceName + "/GetUser"
	methodLogout  = "/" + common.AuthServiceName + "/Logout"
	methodRefresh = "/" + common.AuthServiceName + "/Refresh"
	methodPing    = "/" + common.AuthServiceName + "/Ping"
)

// RotationGrace is how long a rotated refresh token still answers
// tokenAlreadyRefreshed instead of refreshTokenExpired.
const RotationGrace = 10 * time.Second

type account struct {
	id    string
	email string
	name  string
	salt  []byte
	hash  []byte
}

type refreshRecord struct {
	userID    string
	expiresAt time.Time
	rotatedAt time.Time
}

// Server is a fake auth backend listening on an in-memory bufconn.
type Server struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	sessions map[string]*refreshRecord

	clock         clockwork.Clock
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	omitExpiresIn bool
	logger        logging.Logger

	lis  *bufconn.Listener
	stop context.CancelFunc
	done chan error
}

type Option func(*Server)

func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

func WithRefreshTTL(d time.Duration) Option {
	return func(s *Server) { s.refreshTTL = d }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithoutExpiresIn drops expires_in from token_info so clients must read
// the expiry from the JWT.
func WithoutExpiresIn() Option {
	return func(s *Server) { s.omitExpiresIn = true }
}

// NewServer starts a Server. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		byEmail:    map[string]*account{},
		byID:       map[string]*account{},
		sessions:   map[string]*refreshRecord{},
		clock:      clockwork.NewRealClock(),
		secret:     []byte("authtest-secret"),
		accessTTL:  5 * time.Minute,
		refreshTTL: 24 * time.Hour,
		logger:     logging.Discard(),
		lis:        bufconn.Listen(1 << 20),
		done:       make(chan error, 1),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "authtest")

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	go func() { s.done <- s.Serve(ctx, s.lis) }()
	return s
}

// Serve answers calls on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server")

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Close stops the server and waits for it to exit.
func (s *Server) Close() error {
	s.stop()
	return <-s.done
}

// Target is the dial target to use together with DialOptions.
func (s *Server) Target() string {
	return "passthrough:///bufnet"
}

// DialOptions connect a gRPC client to the server.
func (s *Server) DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return s.lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
}

// AddUser registers an account directly and returns its id.
func (s *Server) AddUser(email, name, password string) string {
	acc, err := newAccount(email, name, password)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(acc)
	return acc.id
}

// RevokeAll drops every refresh token, as a server-side logout everywhere.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]*refreshRecord{}
}

type unaryMethod func(s *Server, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn unaryMethod) grpc.MethodDesc {
	full := "/" + common.AuthServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := &structpb.Struct{}
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(*Server), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return fn(srv.(*Server), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: common.AuthServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignIn", (*Server).SignIn),
		unary("SignUp", (*Server).SignUp),
		unary("GetUser", (*Server).GetUser),
		unary("Logout", (*Server).Logout),
		unary("Refresh", (*Server).Refresh),
		unary("Ping", (*Server).Ping),
	},
}

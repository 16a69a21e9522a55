package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/admin"
	"github.com/jrsteele09/go-ems-server/attendance"
	"github.com/jrsteele09/go-ems-server/internal/config"
	"github.com/jrsteele09/go-ems-server/mobile"
	"github.com/jrsteele09/go-ems-server/store"
	"github.com/jrsteele09/go-ems-server/token"
	"github.com/jrsteele09/go-ems-server/users"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the gateway is assembled from.
type Deps struct {
	Store     store.Store
	Directory users.Directory
	Tokens    token.Service
	Engine    *attendance.Engine
	JWKS      *token.JWKS // published when tokens are signed with a key pair
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	store     store.Store
	directory users.Directory
	tokens    token.Service
	location  *time.Location
	mobile    *mobile.Service
	admin     *admin.Service
	jwks      *token.JWKS
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("[Server New] store is required")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("[Server New] directory is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("[Server New] token service is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("[Server New] attendance engine is required")
	}

	mobileService, err := mobile.NewService(mobile.Repos{
		Employees: deps.Store.Employees(),
		Tasks:     deps.Store.Tasks(),
		Leaves:    deps.Store.Leaves(),
		Payroll:   deps.Store.Payroll(),
	}, deps.Directory, deps.Tokens, deps.Engine)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create mobile service: %w", err)
	}

	adminService, err := admin.NewService(admin.Repos{
		Employees: deps.Store.Employees(),
		Leaves:    deps.Store.Leaves(),
		Tasks:     deps.Store.Tasks(),
		Payroll:   deps.Store.Payroll(),
	}, deps.Directory, deps.Engine)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create admin service: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		store:     deps.Store,
		directory: deps.Directory,
		tokens:    deps.Tokens,
		location:  deps.Engine.Location(),
		mobile:    mobileService,
		admin:     adminService,
		jwks:      deps.JWKS,
	}

	// Bootstrap: ensure the admin account and, when enabled, the demo employee exist
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("route registered")
	}
}

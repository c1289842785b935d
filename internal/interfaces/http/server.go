package httpinterface

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/application"
)

// Server exposes the engine's operation surface over JSON. Caller identity
// travels in the request body ("from"); the engine performs all
// authorization checks against it.
type Server struct {
	orderSvc    application.OrderService
	operatorSvc application.OperatorService
	manualSvc   application.ManualService
	router      *mux.Router
	srv         *http.Server
}

// NewServer wires the routes for the given services.
func NewServer(
	orderSvc application.OrderService,
	operatorSvc application.OperatorService,
	manualSvc application.ManualService,
) *Server {
	s := &Server{
		orderSvc:    orderSvc,
		operatorSvc: operatorSvc,
		manualSvc:   manualSvc,
		router:      mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/keys", s.handleDeriveKey).Methods("POST")

	api.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/deposits", s.handleDeposit).Methods("POST")
	api.HandleFunc("/orders/{id}/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/orders/{id}/bids/{index}/cancel", s.handleCancelBid).Methods("POST")
	api.HandleFunc("/orders/{id}/bids/{index}", s.handleChangeBid).Methods("PUT")

	api.HandleFunc("/orders/{id}/swap", s.handleMakeSwap).Methods("POST")
	api.HandleFunc("/orders/{id}/swap/partial", s.handleMakePartialSwap).Methods("POST")
	api.HandleFunc("/orders/{id}/swap/owner", s.handleMakeSwapOrderOwner).Methods("POST")
	api.HandleFunc("/orders/{id}/swap/owner/partial", s.handleMakePartialSwapByOwner).Methods("POST")

	api.HandleFunc("/orders/{id}/investors", s.handleInvestors).Methods("GET")
	api.HandleFunc("/orders/{id}/raised", s.handleRaised).Methods("GET")
	api.HandleFunc("/orders/{id}/investments", s.handleInvestments).Methods("GET")
	api.HandleFunc("/owners/{owner}/orders", s.handleOrdersByOwner).Methods("GET")

	api.HandleFunc("/whitelist", s.handleAddToWhitelist).Methods("POST")
	api.HandleFunc("/whitelist", s.handleListWhitelist).Methods("GET")
	api.HandleFunc("/whitelist/{asset}", s.handleIsWhitelisted).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start serves the interface on the given address until Stop is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.WithField("addr", addr).Info("http interface is listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router, used by the tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glimte/reqlog-go/contracts"
	"github.com/glimte/reqlog-go/transports/nethttp"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo HTTP server behind the logging interceptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           newDemoMux(a.client.HTTP()),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.client.Logger().Info("demo server starting", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")

	return cmd
}

// orderStore is the in-memory store behind the demo endpoints
type orderStore struct {
	mu     sync.Mutex
	nextID int
	orders map[string]map[string]any
}

func newDemoMux(mw *nethttp.Middleware) *http.ServeMux {
	store := &orderStore{nextID: 1, orders: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.Handle("GET /orders/{id}", mw.Endpoint(func(r *http.Request, reply *nethttp.Reply) (any, error) {
		store.mu.Lock()
		defer store.mu.Unlock()

		order, ok := store.orders[r.PathValue("id")]
		if !ok {
			return nil, contracts.NotFound("not found")
		}
		return order, nil
	}))
	mux.Handle("POST /orders", mw.Endpoint(func(r *http.Request, reply *nethttp.Reply) (any, error) {
		var order map[string]any
		if err := decodeJSON(r, &order); err != nil {
			return nil, contracts.NewStatusError(http.StatusBadRequest, "invalid order")
		}

		store.mu.Lock()
		defer store.mu.Unlock()

		id := fmt.Sprintf("%d", store.nextID)
		store.nextID++
		order["id"] = id
		store.orders[id] = order

		reply.SetStatus(http.StatusCreated)
		reply.Header().Set("Location", "/orders/"+id)
		return order, nil
	}))
	mux.Handle("GET /healthz", mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})))

	return mux
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

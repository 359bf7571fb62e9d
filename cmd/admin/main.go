// Lightweight ops server: health probe and cache invalidation. Kept off the
// public API so the main server surface stays read-only for tenants.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/demandloop/backend-go/internal/cache"
	"github.com/demandloop/backend-go/internal/config"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	bullwhipCache, err := cache.NewBullwhipCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize bullwhip cache: %v", err)
	}
	echelonCache, err := cache.NewEchelonCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize echelon cache: %v", err)
	}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Invalidates both dashboard caches. An empty tenant_id clears every
	// tenant, which is the intended behavior after a bulk data load.
	r.HandleFunc("/admin/cache/invalidate", func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.URL.Query().Get("tenant_id")
		ctx := r.Context()

		invalidate := func(name string, fn func() error) error {
			if err := fn(); err != nil {
				return fmt.Errorf("%s cache invalidation failed: %w", name, err)
			}
			return nil
		}

		var errs []string
		if tenantID == "" {
			if err := invalidate("bullwhip", func() error { return bullwhipCache.InvalidateAll(ctx) }); err != nil {
				errs = append(errs, err.Error())
			}
			if err := invalidate("echelon", func() error { return echelonCache.InvalidateAll(ctx) }); err != nil {
				errs = append(errs, err.Error())
			}
		} else {
			if err := invalidate("bullwhip", func() error { return bullwhipCache.InvalidateTenant(ctx, tenantID) }); err != nil {
				errs = append(errs, err.Error())
			}
			if err := invalidate("echelon", func() error { return echelonCache.InvalidateTenant(ctx, tenantID) }); err != nil {
				errs = append(errs, err.Error())
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(errs) > 0 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"errors": errs})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"invalidated": true, "tenant_id": tenantID})
	}).Methods("POST")

	addr := fmt.Sprintf(":%s", cfg.Server.AdminPort)
	log.Printf("Admin server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

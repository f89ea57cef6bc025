// Copyright (c) 2026 Quotable. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/kurokeita/quotable/internal/platform/constants"
	"github.com/kurokeita/quotable/internal/platform/respond"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
// A nil checker is left out of the report.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase Check

	// CheckCache pings the Redis client. Nil when Redis is not configured.
	CheckCache Check
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready. Every dependency is probed concurrently
// under its own deadline.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	named := []struct {
		name  string
		check Check
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, len(named))
	var group errgroup.Group

	for i, dependency := range named {
		if dependency.check == nil {
			continue
		}

		group.Go(func() error {
			ctx, cancel := context.WithTimeout(request.Context(), constants.ReadinessTimeout)
			defer cancel()

			result := checkResult{Name: dependency.name, IsOK: true}
			if err := dependency.check(ctx); err != nil {
				result.IsOK = false
				result.Error = err.Error()
				handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
					slog.String("dependency", dependency.name),
					slog.Any("error", err),
				)
			}
			results[i] = result
			return nil
		})
	}
	_ = group.Wait()

	checks := make([]checkResult, 0, len(results))
	ready := true
	for _, result := range results {
		if result.Name == "" {
			continue
		}
		ready = ready && result.IsOK
		checks = append(checks, result)
	}

	status, httpStatus := "ready", http.StatusOK
	if !ready {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus:  status,
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
		constants.FieldChecks:  checks,
	}})
}

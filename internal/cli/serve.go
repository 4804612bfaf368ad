package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/gridsmith/oneline/pkg/diagram"
	onlerrors "github.com/gridsmith/oneline/pkg/errors"
	"github.com/gridsmith/oneline/pkg/pipeline"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and validation API over HTTP",
		Long: `Serve the layout and validation API over HTTP.

Endpoints:
  POST /api/layout    diagram JSON in, layout result out
  POST /api/validate  diagram JSON in, problem list out
  GET  /healthz       liveness probe

Layout geometry can be overridden per request with query parameters:
strategy, width, margin, vspacing, hspacing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Serve.Addr, "listen address")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.newRouter(runner),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the chi router with all API routes registered.
func (c *CLI) newRouter(runner *pipeline.Runner) http.Handler {
	r := chi.NewRouter()
	r.Use(c.requestLogger)

	r.Get("/healthz", handleHealth)
	r.Post("/api/layout", c.handleLayout(runner))
	r.Post("/api/validate", c.handleValidate)

	return r
}

// requestLogger attaches the CLI logger to the request context and logs each
// request with its duration.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req.WithContext(withLogger(req.Context(), c.Logger)))
		c.Logger.Debug("request", "method", req.Method, "path", req.URL.Path, "duration", time.Since(start))
	})
}

func handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout runs the load → layout pipeline over the posted diagram and
// returns the layout result.
func (c *CLI) handleLayout(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		opts := pipeline.Options{
			Reader:  req.Body,
			Formats: []string{pipeline.FormatPositions},
			Logger:  loggerFromContext(req.Context()),
		}
		applyLayoutParams(&opts, req)

		result, err := runner.Execute(req.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[pipeline.FormatPositions])
	}
}

// handleValidate lists every problem in the posted diagram.
func (c *CLI) handleValidate(w http.ResponseWriter, req *http.Request) {
	g, err := diagram.Read(req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	problems := auditGraph(g)
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// applyLayoutParams overrides layout options from query parameters.
func applyLayoutParams(opts *pipeline.Options, req *http.Request) {
	q := req.URL.Query()
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}
	for param, dst := range map[string]*float64{
		"width":    &opts.ContainerWidth,
		"margin":   &opts.Margin,
		"vspacing": &opts.VerticalSpacing,
		"hspacing": &opts.HorizontalSpacing,
	} {
		if v := q.Get(param); v != "" {
			var f float64
			if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
				*dst = f
			}
		}
	}
}

// writeError maps structured error codes to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch onlerrors.GetCode(err) {
	case onlerrors.ErrCodeInvalidInput, onlerrors.ErrCodeInvalidFormat, onlerrors.ErrCodeInvalidKind,
		onlerrors.ErrCodeDuplicateEquipment, onlerrors.ErrCodeUnknownEquipment,
		onlerrors.ErrCodeSelfLoop, onlerrors.ErrCodeDuplicateEdge:
		status = http.StatusBadRequest
	case onlerrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	// Pipeline validation errors are plain fmt errors; treat them as bad input.
	if status == http.StatusInternalServerError && isOptionsError(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": onlerrors.UserMessage(err)})
}

// isOptionsError reports whether the error came from request option
// validation rather than pipeline execution.
func isOptionsError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid options") ||
		strings.Contains(msg, "invalid strategy") ||
		strings.Contains(msg, "invalid format")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

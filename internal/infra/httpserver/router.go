package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/sentichain/internal/application/analysis"
	appchat "github.com/bryanwahyu/sentichain/internal/application/chat"
	apphistory "github.com/bryanwahyu/sentichain/internal/application/history"
	appmarket "github.com/bryanwahyu/sentichain/internal/application/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/ai"
	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	"github.com/bryanwahyu/sentichain/internal/domain/marketplace"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
	"github.com/bryanwahyu/sentichain/internal/middleware"
	"github.com/bryanwahyu/sentichain/internal/presenter"
)

// maxUpload bounds multipart CSV uploads.
const maxUpload = 10 << 20

// Deps are the services behind the HTTP surface. Chat and Chain may be nil.
type Deps struct {
	Analysis    *appanalysis.Service
	History     *apphistory.Store
	Marketplace *appmarket.Service
	Chat        *appchat.Service
	Chain       chain.Client
	Metrics     *middleware.Metrics
	Health      map[string]middleware.HealthChecker
	Log         *slog.Logger
}

type Router struct {
	d   Deps
	log *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	r := &Router{d: d, log: d.Log}
	if r.log == nil {
		r.log = slog.Default()
	}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", d.Metrics.Handler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/analyze/batch", r.wrap(r.handleBatch))
		rt.Post("/remote/analyze", r.wrap(r.handleRemoteAnalyze))
		rt.Get("/current", r.wrap(r.handleCurrent))
		rt.Post("/chat", r.wrap(r.handleChat))

		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Post("/history/{index}/reanalyze", r.wrap(r.handleReanalyze))

		rt.Get("/marketplace", r.wrap(r.handleMarketplace))
		rt.Post("/marketplace/listings", r.wrap(r.handleCreateListing))
		rt.Post("/marketplace/{id}/purchase", r.wrap(r.handlePurchase))

		rt.Get("/wallet", r.wrap(r.handleWallet))
		rt.Post("/wallet/connect", r.wrap(r.handleWalletConnect))
		rt.Post("/chain/store", r.wrap(r.handleChainStore))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusOf(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				r.log.Error("request failed", "method", req.Method, "path", req.URL.Path, "err", err)
				msg = "internal server error"
			}
			writeJSON(w, status, map[string]string{"error": msg})
		}
	}
}

func statusOf(err error) int {
	var inputErr *sentiment.InputError
	var transportErr *sentiment.TransportError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.Is(err, sentiment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sentiment.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ai.ErrUnavailable),
		errors.Is(err, chain.ErrUnavailable),
		errors.Is(err, appanalysis.ErrAdvancedUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, chain.ErrWalletNotConnected):
		return http.StatusPreconditionFailed
	case errors.Is(err, chain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// warningOf splits a PersistenceError off err: the operation went through in
// memory and the caller only gets a warning.
func warningOf(err error) ([]string, error) {
	var perr *sentiment.PersistenceError
	if errors.As(err, &perr) {
		return []string{perr.Error()}, nil
	}
	return nil, err
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decode(req *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, maxUpload))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return sentiment.NewInputError("invalid JSON body: %v", err)
	}
	return nil
}

type analysisResponse struct {
	Entry    any            `json:"entry"`
	View     presenter.View `json:"view"`
	Warnings []string       `json:"warnings,omitempty"`
}

func (r *Router) respondOutcome(w http.ResponseWriter, out appanalysis.Outcome, warnings []string) error {
	if out.Entry.Results.Sentiment == sentiment.Error {
		r.d.Metrics.IncrementAnalysesFailed()
	} else {
		r.d.Metrics.IncrementAnalyses(string(out.Entry.Model))
	}
	return writeJSON(w, http.StatusOK, analysisResponse{
		Entry:    out.Entry,
		View:     presenter.Present(out.Entry.Results, out.Elapsed),
		Warnings: append(warnings, out.Warnings...),
	})
}

// modelWarning keeps the basic fallback for unknown models but tells the caller.
func modelWarning(model string) []string {
	if err := middleware.ValidateModel(model); err != nil {
		return []string{err.Error() + ", using basic"}
	}
	return nil
}

// POST /api/analyze
// Body: {"text": "...", "url": "...", "keyword": "...", "model": "basic|advanced|blockchain"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body appanalysis.Request
	if err := decode(req, &body); err != nil {
		return err
	}
	body.Text = middleware.SanitizeString(body.Text)
	body.Keyword = middleware.SanitizeString(body.Keyword)
	if err := middleware.ValidateText(body.Text); err != nil {
		return sentiment.NewInputError("%v", err)
	}
	if strings.TrimSpace(body.URL) != "" {
		if err := middleware.ValidateURL(strings.TrimSpace(body.URL)); err != nil {
			return sentiment.NewInputError("%v", err)
		}
	}

	out, err := r.d.Analysis.Analyze(req.Context(), body)
	if err != nil {
		return err
	}
	return r.respondOutcome(w, out, modelWarning(string(body.Model)))
}

// POST /api/analyze/batch (multipart: file=<csv>, model=<name>)
func (r *Router) handleBatch(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxUpload)
	file, _, err := req.FormFile("file")
	if err != nil {
		return sentiment.NewInputError("multipart field 'file' is required")
	}
	defer file.Close()

	model := req.FormValue("model")
	rows, err := r.d.Analysis.AnalyzeBatch(req.Context(), file, sentiment.Model(model))
	if err != nil {
		return err
	}
	r.d.Metrics.AddBatchRows(len(rows))
	return writeJSON(w, http.StatusOK, map[string]any{
		"analysis": rows,
		"count":    len(rows),
		"warnings": modelWarning(model),
	})
}

// POST /api/remote/analyze
// Body: {"text": "..."} or {"url": "..."}, or multipart file=<csv>.
func (r *Router) handleRemoteAnalyze(w http.ResponseWriter, req *http.Request) error {
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		req.Body = http.MaxBytesReader(w, req.Body, maxUpload)
		file, _, err := req.FormFile("file")
		if err != nil {
			return sentiment.NewInputError("multipart field 'file' is required")
		}
		defer file.Close()
		results, err := r.d.Analysis.RemoteBatch(req.Context(), file)
		if err != nil {
			return err
		}
		return writeJSON(w, http.StatusOK, map[string]any{"analysis": results})
	}

	var body sentiment.RemoteRequest
	var extra struct {
		URL string `json:"url"`
	}
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxUpload))
	if err != nil {
		return sentiment.NewInputError("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return sentiment.NewInputError("invalid JSON body: %v", err)
		}
		_ = json.Unmarshal(raw, &extra)
	}
	if strings.TrimSpace(extra.URL) != "" {
		if err := middleware.ValidateURL(strings.TrimSpace(extra.URL)); err != nil {
			return sentiment.NewInputError("%v", err)
		}
	}
	resp, err := r.d.Analysis.RemoteAnalyze(req.Context(), body.Text, extra.URL)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, resp)
}

// GET /api/current
func (r *Router) handleCurrent(w http.ResponseWriter, req *http.Request) error {
	cur, ok := r.d.Analysis.Current()
	if !ok {
		return sentiment.ErrNotFound
	}
	return writeJSON(w, http.StatusOK, analysisResponse{
		Entry: cur,
		View:  presenter.Present(cur.Results, 0),
	})
}

// POST /api/chat
// Body: {"message": "...", "originalText": "...", "analysisResults": {...}}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body appchat.Request
	if err := decode(req, &body); err != nil {
		return err
	}
	body.Message = middleware.SanitizeString(body.Message)
	if err := middleware.ValidateText(body.Message); err != nil {
		return sentiment.NewInputError("%v", err)
	}
	body.UserID = middleware.ClientFromContext(req.Context())

	reply, err := r.d.Chat.Ask(req.Context(), body)
	if err != nil {
		return err
	}
	r.d.Metrics.IncrementChats()
	return writeJSON(w, http.StatusOK, reply)
}

// GET /api/history?filter=&search=&limit=
// Without limit every matching entry is returned.
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	filter := q.Get("filter")
	if err := middleware.ValidateHistoryFilter(filter); err != nil {
		return sentiment.NewInputError("%v", err)
	}
	search := middleware.SanitizeString(q.Get("search"))
	items := r.d.History.List(filter, search)
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return sentiment.NewInputError("limit must be an integer")
		}
		if n = middleware.ValidateLimit(n); len(items) > n {
			items = items[:n]
		}
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
		"total": r.d.History.Len(),
	})
}

// POST /api/history/{index}/reanalyze
func (r *Router) handleReanalyze(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.Atoi(chi.URLParam(req, "index"))
	if err != nil {
		return sentiment.NewInputError("index must be an integer")
	}
	out, err := r.d.Analysis.Reanalyze(req.Context(), index)
	if err != nil {
		return err
	}
	return r.respondOutcome(w, out, nil)
}

// GET /api/marketplace?category=
func (r *Router) handleMarketplace(w http.ResponseWriter, req *http.Request) error {
	category := req.URL.Query().Get("category")
	if err := middleware.ValidateCategory(category); err != nil {
		return sentiment.NewInputError("%v", err)
	}
	listings := r.d.Marketplace.List(category)
	return writeJSON(w, http.StatusOK, map[string]any{
		"items": listings,
		"count": len(listings),
	})
}

// POST /api/marketplace/listings
// Body: {"price": 2.5}
func (r *Router) handleCreateListing(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Price float64 `json:"price"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidatePrice(body.Price); err != nil {
		return sentiment.NewInputError("%v", err)
	}
	cur, _ := r.d.Analysis.Current()
	l, err := r.d.Marketplace.Create(req.Context(), cur, body.Price)
	warnings, err := warningOf(err)
	if err != nil {
		return err
	}
	r.d.Metrics.IncrementListings()
	return writeJSON(w, http.StatusCreated, listingResponse{Listing: l, Warnings: warnings})
}

type listingResponse struct {
	Listing  marketplace.Listing `json:"listing"`
	Warnings []string            `json:"warnings,omitempty"`
}

// POST /api/marketplace/{id}/purchase
func (r *Router) handlePurchase(w http.ResponseWriter, req *http.Request) error {
	id := marketplace.ListingID(chi.URLParam(req, "id"))
	l, err := r.d.Marketplace.Purchase(req.Context(), id)
	warnings, err := warningOf(err)
	if err != nil {
		return err
	}
	r.d.Metrics.IncrementPurchases()
	return writeJSON(w, http.StatusOK, listingResponse{Listing: l, Warnings: warnings})
}

// GET /api/wallet
func (r *Router) handleWallet(w http.ResponseWriter, req *http.Request) error {
	if r.d.Chain == nil {
		return writeJSON(w, http.StatusOK, map[string]any{"enabled": false, "connected": false})
	}
	acct, ok := r.d.Chain.Account(req.Context())
	resp := map[string]any{"enabled": true, "connected": ok}
	if ok {
		resp["account"] = acct
	}
	return writeJSON(w, http.StatusOK, resp)
}

// POST /api/wallet/connect
func (r *Router) handleWalletConnect(w http.ResponseWriter, req *http.Request) error {
	if r.d.Chain == nil {
		return chain.ErrUnavailable
	}
	acct, err := r.d.Chain.Connect(req.Context())
	if err != nil {
		return err
	}
	r.log.Info("wallet connected", "address", acct.Address, "network", acct.Network)
	return writeJSON(w, http.StatusOK, map[string]any{"connected": true, "account": acct})
}

// POST /api/chain/store
func (r *Router) handleChainStore(w http.ResponseWriter, req *http.Request) error {
	ref, err := r.d.Analysis.StoreOnChain(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"blockchainData": ref})
}

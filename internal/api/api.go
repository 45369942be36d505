package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"erc20/sender/internal/models"
	"erc20/sender/internal/services"
	"erc20/sender/internal/stores"
	"erc20/sender/internal/utils/amount"

	"github.com/rs/zerolog"
)

type ApiService struct {
	server *http.Server
	form   *services.TransferForm
	store  stores.TransferStore
	feed   *services.Feed
	log    zerolog.Logger
}

func NewApiService(addr string, form *services.TransferForm, store stores.TransferStore, feed *services.Feed, log zerolog.Logger) *ApiService {
	a := &ApiService{
		form:  form,
		store: store,
		feed:  feed,
		log:   log.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/tokens", a.handleTokens)
	mux.HandleFunc("/form", a.handleForm)
	mux.HandleFunc("/transfer", a.handleSubmit)
	mux.HandleFunc("/transfers", a.handleTransfers)
	mux.HandleFunc("/transfers/", a.handleTransfer)
	mux.HandleFunc("/notifications", a.handleNotifications)
	mux.HandleFunc("/balance/", a.handleBalance)
	mux.Handle("/graphql", NewGraphQLHandler(form, store, feed))

	a.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return a
}

func (a *ApiService) Handler() http.Handler {
	return a.server.Handler
}

func (a *ApiService) Start() error {
	a.log.Info().Str("addr", a.server.Addr).Msg("api listening")
	return a.server.ListenAndServe()
}

func (a *ApiService) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

type submitResponse struct {
	Status string `json:"status"`
	Hash   string `json:"hash,omitempty"`
	Error  string `json:"error,omitempty"`
}

type balanceResponse struct {
	Token   string `json:"token"`
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
	Units   string `json:"units"`
}

func (a *ApiService) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, a.form.Tokens())
}

func (a *ApiService) handleForm(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.form.Snapshot())

	case http.MethodPut:
		var u services.FormUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if err := a.form.Update(u); err != nil {
			// the other fields were applied, report the current state
			writeJSON(w, http.StatusBadRequest, struct {
				services.FormSnapshot
				Error string `json:"error"`
			}{a.form.Snapshot(), err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, a.form.Snapshot())

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *ApiService) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hash, err := a.form.Submit(r.Context())
	if err != nil {
		var verr *services.ValidationError
		status := http.StatusBadGateway
		switch {
		case errors.As(err, &verr):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrTransferInFlight):
			status = http.StatusConflict
		}
		writeJSON(w, status, submitResponse{Status: "error", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{Status: "pending", Hash: hash.Hex()})
}

func (a *ApiService) handleTransfers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	recs := []*models.TransferRecord{}
	if err := a.store.Scan(r.Context(), func(rec *models.TransferRecord) error {
		recs = append(recs, rec)
		return nil
	}); err != nil {
		a.log.Error().Err(err).Msg("failed to list transfers")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	slices.SortFunc(recs, func(x, y *models.TransferRecord) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	writeJSON(w, http.StatusOK, recs)
}

func (a *ApiService) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hash := strings.TrimPrefix(r.URL.Path, "/transfers/")
	if hash == "" || strings.Contains(hash, "/") {
		http.Error(w, "invalid request, expected /transfers/:hash", http.StatusBadRequest)
		return
	}

	rec, err := lookupTransfer(r.Context(), a.store, hash)
	if errors.Is(err, stores.ErrTransferNotFound) {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}
	if err != nil {
		a.log.Error().Err(err).Str("tx", hash).Msg("failed to read transfer")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *ApiService) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var since uint64
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}
	writeJSON(w, http.StatusOK, a.feed.Since(since))
}

func (a *ApiService) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/balance/")
	tok, units, err := a.form.Balance(r.Context(), key)
	if errors.Is(err, services.ErrUnknownToken) {
		http.Error(w, "unsupported token", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.log.Error().Err(err).Str("token", tok.Symbol).Msg("failed to read balance")
		http.Error(w, "balance unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Token:   tok.ID.Hex(),
		Symbol:  tok.Symbol,
		Balance: amount.FromUnits(units, tok.Decimals),
		Units:   units.String(),
	})
}

// Hashes are stored in their canonical 0x-prefixed lower-case form
func lookupTransfer(ctx context.Context, store stores.TransferStore, hash string) (*models.TransferRecord, error) {
	if !strings.HasPrefix(hash, "0x") && !strings.HasPrefix(hash, "0X") {
		hash = "0x" + hash
	}
	return store.Get(ctx, strings.ToLower(hash))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

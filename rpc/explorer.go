package rpc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/alphabill-org/auctionhouse/localnet"
	"github.com/alphabill-org/auctionhouse/state"
	"github.com/alphabill-org/auctionhouse/txsystem"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/tokens"
	"github.com/alphabill-org/auctionhouse/types"
)

const defaultListLimit = 100

type (
	AccountReader interface {
		Account(addr types.Address) (*state.Account, error)
	}

	RecordReader interface {
		Get(seq uint64) (*txsystem.TransactionRecord, error)
		List(from uint64, limit int) ([]*txsystem.TransactionRecord, error)
	}

	AccountResponse struct {
		Address    types.Address `json:"address"`
		Lamports   uint64        `json:"lamports,string"`
		Owner      types.Address `json:"owner"`
		DataLength int           `json:"dataLength"`
		Kind       string        `json:"kind,omitempty"`
		Record     any           `json:"record,omitempty"`
	}

	InstructionResponse struct {
		Program types.Address `json:"program"`
		Type    string        `json:"type"`
	}

	TransactionResponse struct {
		Seq          uint64                 `json:"seq,string"`
		TxHash       string                 `json:"txHash"`
		Success      bool                   `json:"success"`
		ErrorCode    uint32                 `json:"errorCode,omitempty"`
		ErrorName    string                 `json:"errorName,omitempty"`
		Error        string                 `json:"error,omitempty"`
		Signers      []types.Address        `json:"signers,omitempty"`
		Instructions []*InstructionResponse `json:"instructions,omitempty"`
		Targets      []types.Address        `json:"targets,omitempty"`
		StateHash    string                 `json:"stateHash"`
	}
)

/*
ExplorerEndpoints registers read only routes for inspecting the local ledger:

	GET /accounts/{address}
	GET /transactions?from=&limit=
	GET /transactions/{seq}
*/
func ExplorerEndpoints(accounts AccountReader, records RecordReader, log *zerolog.Logger) RegistrarFunc {
	return func(r *mux.Router) {
		r.HandleFunc("/accounts/{address}", getAccount(accounts, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/transactions", listTransactions(records, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/transactions/{seq}", getTransaction(records, log)).Methods(http.MethodGet, http.MethodOptions)
	}
}

func getAccount(accounts AccountReader, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		addr, err := types.AddressFromString(mux.Vars(r)["address"])
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid address: %w", err), log)
			return
		}
		acc, err := accounts.Account(addr)
		if err != nil {
			if errors.Is(err, state.ErrAccountNotFound) {
				writeError(w, http.StatusNotFound, err, log)
				return
			}
			writeError(w, http.StatusInternalServerError, err, log)
			return
		}
		writeJSON(w, http.StatusOK, newAccountResponse(addr, acc), log)
	}
}

func listTransactions(records RecordReader, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseUint(r.URL.Query().Get("from"), 1)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid from: %w", err), log)
			return
		}
		limit, err := parseUint(r.URL.Query().Get("limit"), defaultListLimit)
		if err != nil || limit == 0 || limit > defaultListLimit {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", defaultListLimit), log)
			return
		}
		recs, err := records.List(from, int(limit))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err, log)
			return
		}
		rsp := make([]*TransactionResponse, 0, len(recs))
		for _, rec := range recs {
			rsp = append(rsp, newTransactionResponse(rec))
		}
		writeJSON(w, http.StatusOK, rsp, log)
	}
}

func getTransaction(records RecordReader, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq, err := strconv.ParseUint(mux.Vars(r)["seq"], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid sequence number: %w", err), log)
			return
		}
		rec, err := records.Get(seq)
		if err != nil {
			if errors.Is(err, localnet.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, err, log)
				return
			}
			writeError(w, http.StatusInternalServerError, err, log)
			return
		}
		writeJSON(w, http.StatusOK, newTransactionResponse(rec), log)
	}
}

func newAccountResponse(addr types.Address, acc *state.Account) *AccountResponse {
	rsp := &AccountResponse{
		Address:    addr,
		Lamports:   acc.Lamports,
		Owner:      acc.Owner,
		DataLength: len(acc.Data),
	}
	if !acc.HasData() {
		return rsp
	}
	switch acc.Owner {
	case types.AuctionHouseProgramID:
		switch auctionhouse.DecodeKind(acc) {
		case auctionhouse.KindAuctionHouse:
			rsp.Kind, rsp.Record = decoded("auction_house", auctionhouse.DecodeAuctionHouse, acc)
		case auctionhouse.KindTradeState:
			rsp.Kind, rsp.Record = decoded("trade_state", auctionhouse.DecodeTradeState, acc)
		case auctionhouse.KindEscrow:
			rsp.Kind, rsp.Record = decoded("escrow", auctionhouse.DecodeEscrow, acc)
		}
	case types.TokenProgramID:
		if ta, err := tokens.DecodeTokenAccount(acc); err == nil {
			rsp.Kind, rsp.Record = "token_account", ta
		} else if m, err := tokens.DecodeMint(acc); err == nil {
			rsp.Kind, rsp.Record = "mint", m
		}
	case types.MetadataProgramID:
		rsp.Kind, rsp.Record = decoded("metadata", tokens.DecodeMetadata, acc)
	}
	return rsp
}

func decoded[T any](kind string, decode func(*state.Account) (*T, error), acc *state.Account) (string, any) {
	v, err := decode(acc)
	if err != nil {
		return "", nil
	}
	return kind, v
}

func newTransactionResponse(rec *txsystem.TransactionRecord) *TransactionResponse {
	rsp := &TransactionResponse{
		Seq:       rec.Seq,
		TxHash:    hex.EncodeToString(rec.TxHash),
		Success:   rec.Success,
		ErrorCode: rec.ErrorCode,
		Error:     rec.Error,
		Targets:   rec.Targets,
		StateHash: hex.EncodeToString(rec.StateHash),
	}
	if !rec.Success && rec.ErrorCode != 0 {
		rsp.ErrorName = auctionhouse.DecodeErrorCode(rec.ErrorCode).String()
	}
	if tx := rec.Transaction; tx != nil {
		for _, s := range tx.Signatures {
			rsp.Signers = append(rsp.Signers, s.PubKey)
		}
		for _, ins := range tx.Instructions {
			rsp.Instructions = append(rsp.Instructions, &InstructionResponse{Program: ins.ProgramID, Type: ins.Type})
		}
	}
	return rsp
}

func parseUint(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alphabill-org/auctionhouse/crypto"
	"github.com/alphabill-org/auctionhouse/localnet"
	testlogger "github.com/alphabill-org/auctionhouse/testutils/logger"
	"github.com/alphabill-org/auctionhouse/txsystem/auctionhouse"
	"github.com/alphabill-org/auctionhouse/txsystem/money"
	"github.com/alphabill-org/auctionhouse/types"
)

func newExplorer(t *testing.T) (*localnet.Environment, *auctionhouse.Market, *httptest.Server) {
	t.Helper()
	log := testlogger.New(t)
	authority, bob := crypto.Keypair(1), crypto.Keypair(2)
	env, err := localnet.NewBuilder().WithLamports(authority.Address(), 1_000_000_000).Build(log)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, env.Close()) })

	market := auctionhouse.NewMarket(authority.Address(), types.NativeMint)
	ins, err := market.Create(authority.Address(), 250, false, false)
	require.NoError(t, err)
	o, err := env.Submit("create", []crypto.Signer{authority}, ins)
	require.NoError(t, err)
	require.True(t, o.Success, o.String())

	// bob has no lamports, the transfer fails
	ins, err = money.NewTransfer(bob.Address(), authority.Address(), 1)
	require.NoError(t, err)
	o, err = env.Submit("overdraft", []crypto.Signer{bob}, ins)
	require.NoError(t, err)
	require.False(t, o.Success)

	srv := NewRESTServer(&ServerConfiguration{}, log, ExplorerEndpoints(env, env.Records(), log))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return env, market, ts
}

func get(t *testing.T, url string, status int, v any) {
	t.Helper()
	rsp, err := http.Get(url)
	require.NoError(t, err)
	defer rsp.Body.Close()
	require.Equal(t, status, rsp.StatusCode)
	require.Equal(t, applicationJson, rsp.Header.Get(headerContentType))
	if v != nil {
		require.NoError(t, json.NewDecoder(rsp.Body).Decode(v))
	}
}

func TestExplorer_Account(t *testing.T) {
	env, market, ts := newExplorer(t)

	t.Run("auction house", func(t *testing.T) {
		rsp := map[string]any{}
		get(t, fmt.Sprintf("%s/api/v1/accounts/%s", ts.URL, market.Address), http.StatusOK, &rsp)
		require.Equal(t, "auction_house", rsp["kind"])
		require.Equal(t, types.AuctionHouseProgramID.String(), rsp["owner"])
		require.Equal(t, fmt.Sprint(env.Lamports(market.Address)), rsp["lamports"])
		require.NotNil(t, rsp["record"])
	})
	t.Run("system account", func(t *testing.T) {
		rsp := &AccountResponse{}
		get(t, fmt.Sprintf("%s/api/v1/accounts/%s", ts.URL, crypto.Keypair(1).Address()), http.StatusOK, rsp)
		require.Empty(t, rsp.Kind)
		require.Zero(t, rsp.DataLength)
		require.Equal(t, types.SystemProgramID, rsp.Owner)
	})
	t.Run("not found", func(t *testing.T) {
		rsp := &ErrorResponse{}
		get(t, fmt.Sprintf("%s/api/v1/accounts/%s", ts.URL, crypto.Keypair(9).Address()), http.StatusNotFound, rsp)
		require.Contains(t, rsp.Message, "account not found")
	})
	t.Run("invalid address", func(t *testing.T) {
		get(t, ts.URL+"/api/v1/accounts/0OIl", http.StatusBadRequest, &ErrorResponse{})
	})
}

func TestExplorer_Transactions(t *testing.T) {
	_, _, ts := newExplorer(t)

	t.Run("list", func(t *testing.T) {
		var rsp []*TransactionResponse
		get(t, ts.URL+"/api/v1/transactions", http.StatusOK, &rsp)
		require.Len(t, rsp, 2)
		require.EqualValues(t, 1, rsp[0].Seq)
		require.True(t, rsp[0].Success)
		require.Equal(t, auctionhouse.PayloadTypeCreateAuctionHouse, rsp[0].Instructions[0].Type)
		require.False(t, rsp[1].Success)
		require.NotEmpty(t, rsp[1].Error)
	})
	t.Run("list from", func(t *testing.T) {
		var rsp []*TransactionResponse
		get(t, ts.URL+"/api/v1/transactions?from=2&limit=10", http.StatusOK, &rsp)
		require.Len(t, rsp, 1)
		require.EqualValues(t, 2, rsp[0].Seq)
	})
	t.Run("invalid limit", func(t *testing.T) {
		get(t, ts.URL+"/api/v1/transactions?limit=0", http.StatusBadRequest, nil)
		get(t, ts.URL+"/api/v1/transactions?limit=abc", http.StatusBadRequest, nil)
	})
	t.Run("get", func(t *testing.T) {
		rsp := &TransactionResponse{}
		get(t, ts.URL+"/api/v1/transactions/1", http.StatusOK, rsp)
		require.EqualValues(t, 1, rsp.Seq)
		require.Len(t, rsp.Signers, 1)
		require.NotEmpty(t, rsp.StateHash)
	})
	t.Run("get unknown", func(t *testing.T) {
		get(t, ts.URL+"/api/v1/transactions/42", http.StatusNotFound, nil)
	})
	t.Run("get invalid", func(t *testing.T) {
		get(t, ts.URL+"/api/v1/transactions/x", http.StatusBadRequest, nil)
	})
}

func TestRESTServer_NotFound(t *testing.T) {
	srv := NewRESTServer(&ServerConfiguration{Address: "localhost:0"}, testlogger.New(t))
	require.Equal(t, 3e9, float64(srv.ReadTimeout))
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/basinlabs/baseswap/amm"
	"github.com/basinlabs/baseswap/types"
	bigmath "github.com/basinlabs/baseswap/utils/math"
)

type createPairRequest struct {
	Caller      string `json:"caller"`
	Asset       string `json:"asset"`
	AssetAmount string `json:"asset_amount"`
	BaseAmount  string `json:"base_amount"`
}

type liquidityResponse struct {
	AssetAmount string `json:"asset_amount"`
	BaseAmount  string `json:"base_amount"`
	Shares      string `json:"shares"`
}

func (s *Server) handleCreatePair(w http.ResponseWriter, r *http.Request) {
	var req createPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed body: %v", amm.ErrInvalidArgument, err))
		return
	}

	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		s.writeError(w, err)
		return
	}
	asset, err := parseAddress(req.Asset, "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}
	assetAmount, err := parseAmount(req.AssetAmount, "asset_amount")
	if err != nil {
		s.writeError(w, err)
		return
	}
	baseAmount, err := parseAmount(req.BaseAmount, "base_amount")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.engine.CreatePair(r.Context(), caller, asset, assetAmount, baseAmount)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.recordLiquidity(asset, caller, types.LiquidityCreate, result)
	writeJSON(w, http.StatusCreated, liquidityResult(result))
}

type pairResponse struct {
	AssetReserve string `json:"asset_reserve"`
	BaseReserve  string `json:"base_reserve"`
	TotalShares  string `json:"total_shares"`
	ExchangeRate string `json:"exchange_rate,omitempty"`
}

func (s *Server) handleGetPair(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	assetReserve, baseReserve, err := s.engine.GetLiquidity(asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	totalShares, err := s.engine.TotalShares(asset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := pairResponse{
		AssetReserve: assetReserve.String(),
		BaseReserve:  baseReserve.String(),
		TotalShares:  totalShares.String(),
	}
	// The rate is undefined for a drained pair; omit it rather than fail the read.
	if rate, err := s.engine.GetExchangeRate(asset); err == nil {
		resp.ExchangeRate = rate.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type addLiquidityRequest struct {
	Caller      string `json:"caller"`
	AssetAmount string `json:"asset_amount"`
	BaseAmount  string `json:"base_amount"`
}

func (s *Server) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req addLiquidityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed body: %v", amm.ErrInvalidArgument, err))
		return
	}

	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		s.writeError(w, err)
		return
	}
	assetAmount, err := parseAmount(req.AssetAmount, "asset_amount")
	if err != nil {
		s.writeError(w, err)
		return
	}
	baseAmount, err := parseAmount(req.BaseAmount, "base_amount")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.engine.AddLiquidity(r.Context(), caller, asset, assetAmount, baseAmount)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.recordLiquidity(asset, caller, types.LiquidityAdd, result)
	writeJSON(w, http.StatusOK, liquidityResult(result))
}

type removeLiquidityRequest struct {
	Caller string `json:"caller"`
	Shares string `json:"shares"`
}

func (s *Server) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req removeLiquidityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed body: %v", amm.ErrInvalidArgument, err))
		return
	}

	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		s.writeError(w, err)
		return
	}
	shares, err := parseAmount(req.Shares, "shares")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.engine.RemoveLiquidity(r.Context(), caller, asset, shares)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.recordLiquidity(asset, caller, types.LiquidityRemove, result)
	writeJSON(w, http.StatusOK, liquidityResult(result))
}

type quoteResponse struct {
	Direction string `json:"direction"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	direction := types.SwapDirection(r.URL.Query().Get("direction"))
	if !direction.Valid() {
		s.writeError(w, fmt.Errorf("%w: unknown direction %q", amm.ErrInvalidArgument, direction))
		return
	}
	amountIn, err := parseAmount(r.URL.Query().Get("amount"), "amount")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var out *big.Int
	if direction == types.BaseToAsset {
		out, err = s.engine.GetAssetOutForBase(asset, amountIn)
	} else {
		out, err = s.engine.GetBaseOutForAsset(asset, amountIn)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Direction: string(direction),
		AmountIn:  amountIn.String(),
		AmountOut: out.String(),
	})
}

type swapRequest struct {
	Caller       string `json:"caller"`
	Direction    string `json:"direction"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: malformed body: %v", amm.ErrInvalidArgument, err))
		return
	}

	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		s.writeError(w, err)
		return
	}
	direction := types.SwapDirection(req.Direction)
	if !direction.Valid() {
		s.writeError(w, fmt.Errorf("%w: unknown direction %q", amm.ErrInvalidArgument, direction))
		return
	}
	amountIn, err := parseAmount(req.AmountIn, "amount_in")
	if err != nil {
		s.writeError(w, err)
		return
	}
	minOut := new(big.Int)
	if req.MinAmountOut != "" {
		minOut, err = parseAmount(req.MinAmountOut, "min_amount_out")
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	var out *big.Int
	if direction == types.BaseToAsset {
		out, err = s.engine.SwapBaseForAsset(r.Context(), caller, asset, amountIn, minOut)
	} else {
		out, err = s.engine.SwapAssetForBase(r.Context(), caller, asset, amountIn, minOut)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.hist != nil {
		if err := s.hist.RecordSwap(types.SwapEvent{
			Asset:     asset,
			Caller:    caller,
			Direction: direction,
			AmountIn:  amountIn,
			AmountOut: out,
			Time:      time.Now(),
		}); err != nil {
			s.log.Warn("failed to journal swap", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Direction: string(direction),
		AmountIn:  amountIn.String(),
		AmountOut: out.String(),
	})
}

func (s *Server) handleSwapHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		http.NotFound(w, r)
		return
	}
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.hist.RecentSwaps(asset.Hex(), queryLimit(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleLiquidityHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		http.NotFound(w, r)
		return
	}
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	records, err := s.hist.RecentLiquidity(asset.Hex(), queryLimit(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type priceResponse struct {
	Price     string `json:"price"`
	Decimals  uint8  `json:"decimals"`
	Timestamp int64  `json:"timestamp"`
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	quote, err := s.oracle.GetLatestPrice(r.Context(), asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{
		Price:     quote.Price.String(),
		Decimals:  quote.Decimals,
		Timestamp: quote.Timestamp.Unix(),
	})
}

func (s *Server) handleBasePrice(w http.ResponseWriter, r *http.Request) {
	quote, err := s.oracle.GetLatestBasePrice(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{
		Price:     quote.Price.String(),
		Decimals:  quote.Decimals,
		Timestamp: quote.Timestamp.Unix(),
	})
}

type convertResponse struct {
	Direction string `json:"direction"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	direction := r.URL.Query().Get("direction")
	amount, err := parseAmount(r.URL.Query().Get("amount"), "amount")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var out *big.Int
	switch direction {
	case "token_to_usd":
		out, err = s.oracle.ConvertTokenToUSD(r.Context(), asset, amount)
	case "usd_to_token":
		out, err = s.oracle.ConvertUSDToToken(r.Context(), asset, amount)
	default:
		s.writeError(w, fmt.Errorf("%w: unknown direction %q", amm.ErrInvalidArgument, direction))
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Direction: direction,
		AmountIn:  amount.String(),
		AmountOut: out.String(),
	})
}

func (s *Server) handleDecimals(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(mux.Vars(r)["asset"], "asset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	decimals, err := s.oracle.GetPriceFeedDecimals(r.Context(), asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint8{"decimals": decimals})
}

func (s *Server) recordLiquidity(asset, caller common.Address, kind types.LiquidityKind, result *amm.LiquidityResult) {
	if s.hist == nil {
		return
	}
	if err := s.hist.RecordLiquidity(types.LiquidityEvent{
		Asset:       asset,
		Caller:      caller,
		Kind:        kind,
		AssetAmount: result.AssetAmount,
		BaseAmount:  result.BaseAmount,
		Shares:      result.Shares,
		Time:        time.Now(),
	}); err != nil {
		s.log.Warn("failed to journal liquidity change", zap.Error(err))
	}
}

func liquidityResult(result *amm.LiquidityResult) liquidityResponse {
	return liquidityResponse{
		AssetAmount: result.AssetAmount.String(),
		BaseAmount:  result.BaseAmount.String(),
		Shares:      result.Shares.String(),
	}
}

func parseAddress(hex, field string) (common.Address, error) {
	if !common.IsHexAddress(hex) {
		return common.Address{}, fmt.Errorf("%w: %s is not a hex address", amm.ErrInvalidArgument, field)
	}
	return common.HexToAddress(hex), nil
}

func parseAmount(value, field string) (*big.Int, error) {
	amount, err := bigmath.FromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a base-10 integer", amm.ErrInvalidArgument, field)
	}
	return amount, nil
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

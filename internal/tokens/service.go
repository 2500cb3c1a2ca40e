// internal/tokens/service.go
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mcintyre94/swapsies/internal/token"
)

const metadataTTL = 5 * time.Minute

// ErrNotFound is returned when a mint cannot be resolved from the chain, the
// token API, or the known-token table.
var ErrNotFound = errors.New("token not found")

// ChainClient is the subset of the Solana RPC client used for mint lookups.
type ChainClient interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Service resolves token metadata: decimals from the chain, symbol and name
// from the token API, with a TTL cache and request deduplication in front.
type Service struct {
	chain      ChainClient
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger

	cache  sync.Map // mint -> cachedToken
	flight singleflight.Group
}

type cachedToken struct {
	tok       token.Token
	expiresAt time.Time
}

// NewService creates a metadata service. chain may be nil, in which case
// decimals come from the API or the known-token table only.
func NewService(chain ChainClient, apiURL string, logger *zap.Logger) *Service {
	return &Service{
		chain:  chain,
		apiURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Lookup resolves metadata for a mint. Concurrent lookups for the same mint
// collapse into a single upstream fetch.
func (s *Service) Lookup(ctx context.Context, mint string) (*token.Token, error) {
	if tok, ok := s.getFromCache(mint); ok {
		s.logger.Debug("token metadata retrieved from cache",
			zap.String("mint", mint),
			zap.String("symbol", tok.Symbol))
		return tok, nil
	}

	v, err, _ := s.flight.Do(mint, func() (interface{}, error) {
		return s.lookup(ctx, mint)
	})
	if err != nil {
		return nil, err
	}
	return v.(*token.Token), nil
}

func (s *Service) lookup(ctx context.Context, mint string) (*token.Token, error) {
	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	tok := token.Token{Mint: mint}
	decimalsKnown := false

	if s.chain != nil {
		decimals, err := s.decimalsFromChain(ctx, pubkey)
		if err != nil {
			s.logger.Debug("failed to get on-chain decimals",
				zap.String("mint", mint),
				zap.Error(err))
		} else {
			tok.Decimals = decimals
			decimalsKnown = true
		}
	}

	if err := s.enrichFromAPI(ctx, &tok, &decimalsKnown); err != nil {
		s.logger.Debug("failed to enrich metadata from API",
			zap.String("mint", mint),
			zap.Error(err))
	}

	if tok.Symbol == "" || tok.Name == "" || !decimalsKnown {
		if known, ok := knownTokens[mint]; ok {
			if tok.Symbol == "" {
				tok.Symbol = known.Symbol
			}
			if tok.Name == "" {
				tok.Name = known.Name
			}
			if !decimalsKnown {
				tok.Decimals = known.Decimals
				decimalsKnown = true
			}
		}
	}

	// Without decimals every amount conversion would be wrong, so an
	// unresolved token is an error rather than a guess.
	if !decimalsKnown {
		return nil, fmt.Errorf("%w: could not resolve decimals for %s", ErrNotFound, mint)
	}

	s.cache.Store(mint, cachedToken{tok: tok, expiresAt: time.Now().Add(metadataTTL)})

	s.logger.Debug("token metadata retrieved",
		zap.String("mint", mint),
		zap.Uint8("decimals", tok.Decimals),
		zap.String("symbol", tok.Symbol),
		zap.String("name", tok.Name))

	return &tok, nil
}

func (s *Service) getFromCache(mint string) (*token.Token, bool) {
	if value, ok := s.cache.Load(mint); ok {
		cached := value.(cachedToken)
		if time.Now().Before(cached.expiresAt) {
			tok := cached.tok
			return &tok, true
		}
		s.cache.Delete(mint)
	}
	return nil, false
}

// decimalsFromChain reads the mint account; the decimals byte sits at offset
// 44 of the SPL mint layout.
func (s *Service) decimalsFromChain(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	acc, err := s.chain.GetAccountInfo(ctx, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account: %w", err)
	}
	if acc == nil || acc.Value == nil {
		return 0, fmt.Errorf("mint account not found: %s", mint.String())
	}

	data := acc.Value.Data.GetBinary()
	if len(data) < 45 {
		return 0, fmt.Errorf("invalid mint account data length: %d", len(data))
	}

	return data[44], nil
}

func (s *Service) enrichFromAPI(ctx context.Context, tok *token.Token, decimalsKnown *bool) error {
	endpoint := fmt.Sprintf("%s/token/%s", s.apiURL, tok.Mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token API returned status code: %d", resp.StatusCode)
	}

	var info token.Token
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}

	if info.Symbol != "" {
		tok.Symbol = info.Symbol
	}
	if info.Name != "" {
		tok.Name = info.Name
	}
	if info.LogoURI != "" {
		tok.LogoURI = info.LogoURI
	}
	// The chain is authoritative for decimals when available.
	if !*decimalsKnown && info.Decimals > 0 {
		tok.Decimals = info.Decimals
		*decimalsKnown = true
	}

	return nil
}

// Search queries the token API for the UI token picker.
func (s *Service) Search(ctx context.Context, query string) ([]token.Token, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	endpoint := s.apiURL + "/search?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token API returned status code: %d", resp.StatusCode)
	}

	var results []token.Token
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	s.logger.Debug("token search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}

// knownTokens covers the majors so the tool works even when the token API is
// down.
var knownTokens = map[string]token.Token{
	token.WSOLMint: {
		Mint: token.WSOLMint, Symbol: "SOL", Name: "Wrapped SOL", Decimals: 9,
	},
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {
		Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Symbol: "USDC", Name: "USD Coin", Decimals: 6,
	},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {
		Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Symbol: "USDT", Name: "USDT", Decimals: 6,
	},
}

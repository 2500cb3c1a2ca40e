// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"github.com/mcintyre94/swapsies/internal/token"
)

// Wallet is a watch-only Solana wallet: a named public key. No private key
// material ever enters this program.
type Wallet struct {
	Name      string
	PublicKey solana.PublicKey

	mu       sync.Mutex
	ataCache map[string]solana.PublicKey
}

// ChainClient is the subset of the RPC client used for balance reads.
type ChainClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

// New creates a watch-only wallet from a base58-encoded public key.
func New(name, pubkeyBase58 string) (*Wallet, error) {
	keyBytes, err := base58.Decode(strings.TrimSpace(pubkeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("invalid public key length: expected 32 bytes, got %d", len(keyBytes))
	}
	return &Wallet{
		Name:      name,
		PublicKey: solana.PublicKeyFromBytes(keyBytes),
		ataCache:  make(map[string]solana.PublicKey),
	}, nil
}

// GetATA returns the associated token account address for a mint, cached
// after the first derivation.
func (w *Wallet) GetATA(mint solana.PublicKey) (solana.PublicKey, error) {
	mintStr := mint.String()

	w.mu.Lock()
	defer w.mu.Unlock()

	if ata, ok := w.ataCache[mintStr]; ok {
		return ata, nil
	}
	ata, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.ataCache[mintStr] = ata
	return ata, nil
}

// SOLBalance reads the wallet's lamport balance and returns it in SOL.
func (w *Wallet) SOLBalance(ctx context.Context, client ChainClient) (decimal.Decimal, error) {
	result, err := client.GetBalance(ctx, w.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return token.LamportsToSOL(result.Value), nil
}

// TokenBalance reads the wallet's balance of the given mint via its
// associated token account. A missing account reads as zero.
func (w *Wallet) TokenBalance(ctx context.Context, client ChainClient, mint solana.PublicKey) (decimal.Decimal, error) {
	ata, err := w.GetATA(mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to derive token account: %w", err)
	}

	result, err := client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		// An uncreated token account is indistinguishable from an empty one
		// for display purposes.
		return decimal.Zero, nil
	}
	if result == nil || result.Value == nil {
		return decimal.Zero, nil
	}

	native, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse token balance %q: %w", result.Value.Amount, err)
	}
	return token.ToDisplayAmount(native, result.Value.Decimals), nil
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}

// Book holds the named wallets loaded from CSV plus the active selection used
// as the fee-payer party in quote requests.
type Book struct {
	mu      sync.RWMutex
	wallets map[string]*Wallet
	active  string
}

// LoadBook loads wallets from a CSV file with columns: [Name, PublicKeyBase58].
// Invalid rows are skipped; the first valid wallet becomes active.
func LoadBook(path string) (*Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or missing data")
	}

	book := &Book{wallets: make(map[string]*Wallet)}
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		w, err := New(name, record[1])
		if err != nil {
			continue
		}
		book.wallets[name] = w
		if book.active == "" {
			book.active = name
		}
	}
	if len(book.wallets) == 0 {
		return nil, fmt.Errorf("no valid wallets in %s", path)
	}
	return book, nil
}

// NewBook creates an empty book for programs that add wallets directly.
func NewBook() *Book {
	return &Book{wallets: make(map[string]*Wallet)}
}

// Add inserts a wallet; the first wallet added becomes active.
func (b *Book) Add(w *Wallet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wallets[w.Name] = w
	if b.active == "" {
		b.active = w.Name
	}
}

// Get returns a wallet by name.
func (b *Book) Get(name string) (*Wallet, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.wallets[name]
	return w, ok
}

// Active returns the currently selected wallet.
func (b *Book) Active() (*Wallet, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.wallets[b.active]
	return w, ok
}

// SetActive selects the wallet used as the quote taker.
func (b *Book) SetActive(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.wallets[name]; !ok {
		return fmt.Errorf("unknown wallet: %s", name)
	}
	b.active = name
	return nil
}

// Names returns wallet names in sorted order.
func (b *Book) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.wallets))
	for name := range b.wallets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of wallets in the book.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.wallets)
}

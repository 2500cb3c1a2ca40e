package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mcintyre94/swapsies/internal/basis"
	"github.com/mcintyre94/swapsies/internal/events"
	"github.com/mcintyre94/swapsies/internal/logger"
	"github.com/mcintyre94/swapsies/internal/preview"
	"github.com/mcintyre94/swapsies/internal/token"
	"github.com/mcintyre94/swapsies/internal/ui/component"
	"github.com/mcintyre94/swapsies/internal/ui/style"
	"github.com/mcintyre94/swapsies/internal/wallet"
)

const (
	refreshInterval = 2 * time.Second
	lookupTimeout   = 10 * time.Second

	// balanceEvery is how many refresh ticks pass between balance reads.
	balanceEvery = 15
)

// Previewer is the slice of the preview engine the UI drives.
type Previewer interface {
	SetPair(inputMint, outputMint string)
	SetAmount(display string)
	SetParty(party string)
	Flush()
	Results() <-chan preview.Result
}

// TokenDirectory resolves and searches token metadata.
type TokenDirectory interface {
	Lookup(ctx context.Context, mint string) (*token.Token, error)
	Search(ctx context.Context, query string) ([]token.Token, error)
}

// Config wires the model's collaborators.
type Config struct {
	Ctx     context.Context
	Engine  Previewer
	Tokens  TokenDirectory
	Store   basis.Store
	Book    *wallet.Book
	Chain   wallet.ChainClient
	Bus     *events.Bus
	Ring    *logger.Ring
	Logger  *zap.Logger
	Backend string
}

// Model is the root bubbletea model. All money math lives behind the
// preview engine; the model routes keys and renders results.
type Model struct {
	ctx    context.Context
	engine Previewer
	tokens TokenDirectory
	store  basis.Store
	book   *wallet.Book
	chain  wallet.ChainClient
	bus    *events.Bus
	logger *zap.Logger

	keyMap KeyMap
	mode   Mode
	width  int
	height int

	form      *component.SwapForm
	picker    *component.TokenPicker
	basisForm *component.BasisForm
	header    *component.StatusHeader
	costPanel *component.CostPanel
	pnlPanel  *component.PnLPanel
	logTail   *component.LogTail
	helpBar   *component.HelpBar

	lastIn     string
	lastOut    string
	lastAmount string
	lastSearch string

	inToken      *token.Token
	outToken     *token.Token
	resolvedPair string

	tickCount  int
	statusLine string
	statusErr  bool
}

// New builds the root model.
func New(cfg Config) *Model {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	m := &Model{
		ctx:    cfg.Ctx,
		engine: cfg.Engine,
		tokens: cfg.Tokens,
		store:  cfg.Store,
		book:   cfg.Book,
		chain:  cfg.Chain,
		bus:    cfg.Bus,
		logger: cfg.Logger.Named("ui"),

		keyMap: DefaultKeyMap(),
		mode:   ModeSwap,

		form:      component.NewSwapForm(),
		picker:    component.NewTokenPicker(),
		basisForm: component.NewBasisForm(),
		header:    component.NewStatusHeader(),
		costPanel: component.NewCostPanel(),
		pnlPanel:  component.NewPnLPanel(),
		logTail:   component.NewLogTail(cfg.Ring),
		helpBar:   component.NewHelpBar(),
	}

	m.header.SetBackend(cfg.Backend)
	if w, ok := m.activeWallet(); ok {
		m.header.SetWallet(w.Name, w.PublicKey.String())
		m.engine.SetParty(w.PublicKey.String())
	}

	return m
}

func (m *Model) activeWallet() (*wallet.Wallet, bool) {
	if m.book == nil {
		return nil, false
	}
	return m.book.Active()
}

// Init starts the result pump, the refresh ticker, and the first balance
// read.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitForPreview(m.engine.Results()),
		tick(refreshInterval),
	}
	if cmd := m.fetchBalance(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update routes messages by mode.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case PreviewMsg:
		return m, tea.Batch(m.handlePreview(msg.Result)...)

	case SymbolsMsg:
		m.handleSymbols(msg)
		return m, nil

	case BalanceMsg:
		if msg.Err != nil {
			m.logger.Warn("Balance read failed",
				zap.String("wallet", msg.Wallet),
				zap.Error(msg.Err))
			return m, nil
		}
		m.header.SetSOLBalance(msg.SOL)
		return m, nil

	case SearchResultMsg:
		if m.mode == ModePicker && msg.Query == m.lastSearch {
			m.picker.SetResults(msg.Tokens, msg.Err)
		}
		return m, nil

	case BasisSavedMsg:
		return m, m.handleBasisSaved(msg)

	case BasisDeletedMsg:
		return m, m.handleBasisDeleted(msg)

	case TickMsg:
		m.tickCount++
		cmds := []tea.Cmd{tick(refreshInterval)}
		if m.tickCount%balanceEvery == 0 {
			if cmd := m.fetchBalance(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}
		switch m.mode {
		case ModePicker:
			return m, m.updatePicker(msg)
		case ModeBasis:
			return m, m.updateBasis(msg)
		default:
			return m, m.updateSwap(msg)
		}
	}

	// Non-key messages still reach the focused widgets (cursor blink).
	return m, m.forward(msg)
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	switch m.mode {
	case ModePicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	case ModeBasis:
		var cmd tea.Cmd
		m.basisForm, cmd = m.basisForm.Update(msg)
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, m.logTail.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateSwap(msg tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, m.keyMap.NextField):
		m.form.NextField()

	case key.Matches(msg, m.keyMap.PrevField):
		m.form.PrevField()

	case key.Matches(msg, m.keyMap.Refresh):
		m.engine.Flush()

	case key.Matches(msg, m.keyMap.SwapDirection):
		m.form.Flip()
		m.inToken, m.outToken = m.outToken, m.inToken
		m.refreshSymbols()
		m.syncForm()

	case key.Matches(msg, m.keyMap.CycleWallet):
		cmds = append(cmds, m.cycleWallet())

	case key.Matches(msg, m.keyMap.EditBasis):
		if mint := m.form.InputMint(); mint != "" {
			m.basisForm.SetToken(mint, m.symbolFor(mint))
			m.mode = ModeBasis
			m.statusLine = ""
		} else {
			m.setStatus("enter a sell-side mint before editing its cost basis", true)
		}

	case key.Matches(msg, m.keyMap.SearchToken):
		target := component.FieldInputMint
		if m.form.Focused() == component.FieldOutputMint {
			target = component.FieldOutputMint
		}
		m.picker.Open(target)
		m.lastSearch = ""
		m.mode = ModePicker
		m.statusLine = ""

	case key.Matches(msg, m.keyMap.ToggleLogs):
		m.logTail.Toggle()

	default:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		cmds = append(cmds, cmd)
		m.syncForm()
	}

	return tea.Batch(cmds...)
}

// syncForm pushes changed form values into the engine.
func (m *Model) syncForm() {
	in, out, amount := m.form.InputMint(), m.form.OutputMint(), m.form.Amount()

	if in != m.lastIn || out != m.lastOut {
		m.lastIn, m.lastOut = in, out
		m.engine.SetPair(in, out)
	}
	if amount != m.lastAmount {
		m.lastAmount = amount
		m.engine.SetAmount(amount)
	}
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.mode = ModeSwap
		return nil

	case key.Matches(msg, m.keyMap.Up):
		m.picker.MoveUp()
		return nil

	case key.Matches(msg, m.keyMap.Down):
		m.picker.MoveDown()
		return nil

	case key.Matches(msg, m.keyMap.Select):
		query := m.picker.Query()
		// Enter searches until results exist for the current query, then it
		// selects.
		if m.picker.HasResults() && query == m.lastSearch {
			if tok := m.picker.Selected(); tok != nil {
				m.applyPicked(*tok)
			}
			m.mode = ModeSwap
			m.syncForm()
			return nil
		}
		if query == "" {
			return nil
		}
		m.lastSearch = query
		m.picker.SetSearching(true)
		return m.search(query)

	default:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return cmd
	}
}

func (m *Model) applyPicked(tok token.Token) {
	m.form.SetMint(m.picker.Target(), tok.Mint, tok.Symbol)
	if m.picker.Target() == component.FieldInputMint {
		m.inToken = &tok
	} else {
		m.outToken = &tok
	}
	m.refreshSymbols()
}

func (m *Model) updateBasis(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.mode = ModeSwap
		return nil

	case key.Matches(msg, m.keyMap.NextField):
		m.basisForm.NextField()
		return nil

	case key.Matches(msg, m.keyMap.DeleteBasis):
		return m.deleteBasis(m.basisForm.Mint())

	case key.Matches(msg, m.keyMap.Select):
		totalStr, unitsStr := m.basisForm.Values()
		total, err := decimal.NewFromString(totalStr)
		if err != nil {
			m.basisForm.SetError("total must be a number")
			return nil
		}
		units, err := decimal.NewFromString(unitsStr)
		if err != nil {
			m.basisForm.SetError("units must be a number")
			return nil
		}
		rec, err := basis.NewRecordFromTotals(m.basisForm.Mint(), total, units)
		if err != nil {
			m.basisForm.SetError(err.Error())
			return nil
		}
		if tok := m.inToken; tok != nil && tok.Mint == rec.Mint {
			rec.Symbol = tok.Symbol
			rec.Name = tok.Name
			rec.LogoURI = tok.LogoURI
		}
		return m.saveBasis(rec)

	default:
		var cmd tea.Cmd
		m.basisForm, cmd = m.basisForm.Update(msg)
		return cmd
	}
}

func (m *Model) handlePreview(res preview.Result) []tea.Cmd {
	cmds := []tea.Cmd{waitForPreview(m.engine.Results())}

	m.costPanel.SetResult(res)
	m.pnlPanel.SetResult(res)

	if res.SOLPriceUSD != nil {
		m.header.SetSOLPrice(*res.SOLPriceUSD)
	}

	// Resolve symbols once per settled, quotable pair. The lookups hit the
	// metadata cache that the engine just warmed.
	if res.State == preview.StateReady {
		pair := res.Input.InputMint + "/" + res.Input.OutputMint
		if pair != m.resolvedPair {
			m.resolvedPair = pair
			cmds = append(cmds, m.resolveSymbols(res.Input.InputMint, res.Input.OutputMint))
		}
	}

	return cmds
}

func (m *Model) handleSymbols(msg SymbolsMsg) {
	if msg.In != nil {
		m.inToken = msg.In
	}
	if msg.Out != nil {
		m.outToken = msg.Out
	}
	m.refreshSymbols()
}

func (m *Model) refreshSymbols() {
	in, out := "", ""
	if m.inToken != nil && m.inToken.Mint == m.form.InputMint() {
		in = m.inToken.Symbol
	}
	if m.outToken != nil && m.outToken.Mint == m.form.OutputMint() {
		out = m.outToken.Symbol
	}
	m.form.SetSymbols(in, out)
	m.costPanel.SetSymbols(in, out)
	m.pnlPanel.SetSymbol(in)
}

func (m *Model) symbolFor(mint string) string {
	if m.inToken != nil && m.inToken.Mint == mint {
		return m.inToken.Symbol
	}
	if m.outToken != nil && m.outToken.Mint == mint {
		return m.outToken.Symbol
	}
	return ""
}

func (m *Model) handleBasisSaved(msg BasisSavedMsg) tea.Cmd {
	if msg.Err != nil {
		m.basisForm.SetError(msg.Err.Error())
		return nil
	}

	m.mode = ModeSwap
	m.setStatus(fmt.Sprintf("cost basis saved: %s at %s/unit",
		displayToken(msg.Rec.Symbol, msg.Rec.Mint), "$"+msg.Rec.CostPerUnitUSD.StringFixed(4)), false)
	m.publishBasisChanged(msg.Rec.Mint, "set")

	// Re-quote so the gain/loss pane picks up the new record.
	m.engine.SetAmount(m.lastAmount)
	return nil
}

func (m *Model) handleBasisDeleted(msg BasisDeletedMsg) tea.Cmd {
	if msg.Err != nil {
		m.basisForm.SetError(msg.Err.Error())
		return nil
	}

	m.mode = ModeSwap
	m.setStatus("cost basis deleted for "+shortenMint(msg.Mint), false)
	m.publishBasisChanged(msg.Mint, "delete")
	m.engine.SetAmount(m.lastAmount)
	return nil
}

func (m *Model) publishBasisChanged(mint, action string) {
	if m.bus == nil {
		return
	}
	_ = m.bus.Publish(events.BasisChangedEvent{
		BaseEvent: events.NewBase(events.BasisChanged),
		Mint:      mint,
		Action:    action,
	})
}

func (m *Model) cycleWallet() tea.Cmd {
	if m.book == nil || m.book.Len() < 2 {
		return nil
	}

	names := m.book.Names()
	active, _ := m.book.Active()
	next := names[0]
	for i, name := range names {
		if active != nil && name == active.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	if err := m.book.SetActive(next); err != nil {
		m.logger.Warn("Wallet switch failed", zap.String("wallet", next), zap.Error(err))
		return nil
	}

	w, _ := m.book.Active()
	m.header.SetWallet(w.Name, w.PublicKey.String())
	m.engine.SetParty(w.PublicKey.String())
	m.setStatus("active wallet: "+w.Name, false)

	if m.bus != nil {
		_ = m.bus.Publish(events.WalletSelectedEvent{
			BaseEvent: events.NewBase(events.WalletSelected),
			Name:      w.Name,
			Pubkey:    w.PublicKey.String(),
		})
	}

	return m.fetchBalance()
}

func (m *Model) setStatus(line string, isErr bool) {
	m.statusLine = line
	m.statusErr = isErr
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width)
	m.form.SetWidth(min(width, 64))
	m.costPanel.SetWidth(min(width, 64))
	m.pnlPanel.SetWidth(min(width, 64))
	m.logTail.SetSize(width, 10)
	m.helpBar.SetWidth(width)
}

// View renders the whole screen for the current mode.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch m.mode {
	case ModePicker:
		body = m.picker.View()
	case ModeBasis:
		body = m.basisForm.View()
	default:
		sections := []string{m.form.View(), "", m.costPanel.View()}
		if pnl := m.pnlPanel.View(); pnl != "" {
			sections = append(sections, pnl)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	parts := []string{m.header.View(), body}
	if tail := m.logTail.View(); tail != "" {
		parts = append(parts, tail)
	}
	if m.statusLine != "" {
		parts = append(parts, m.renderStatus())
	}
	parts = append(parts, m.helpBar.SetKeyBindings(m.keyMap.ContextualHelp(m.mode)).View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderStatus() string {
	palette := style.DefaultPalette()
	color := palette.Success
	if m.statusErr {
		color = palette.Error
	}
	return lipgloss.NewStyle().Foreground(color).Padding(0, 1).Render(m.statusLine)
}

// fetchBalance reads the active wallet's SOL balance.
func (m *Model) fetchBalance() tea.Cmd {
	w, ok := m.activeWallet()
	if !ok || m.chain == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		sol, err := w.SOLBalance(reqCtx, m.chain)
		return BalanceMsg{Wallet: w.Name, SOL: sol, Err: err}
	}
}

// resolveSymbols looks up both sides of the pair for display.
func (m *Model) resolveSymbols(in, out string) tea.Cmd {
	if m.tokens == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()

		var msg SymbolsMsg
		if tok, err := m.tokens.Lookup(reqCtx, in); err == nil {
			msg.In = tok
		}
		if tok, err := m.tokens.Lookup(reqCtx, out); err == nil {
			msg.Out = tok
		}
		return msg
	}
}

// search queries the token directory for the picker.
func (m *Model) search(query string) tea.Cmd {
	if m.tokens == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		tokens, err := m.tokens.Search(reqCtx, query)
		return SearchResultMsg{Query: query, Tokens: tokens, Err: err}
	}
}

// saveBasis upserts the record off the UI goroutine.
func (m *Model) saveBasis(rec *basis.Record) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		if err := m.store.Put(reqCtx, rec); err != nil {
			return BasisSavedMsg{Err: err}
		}
		return BasisSavedMsg{Rec: rec}
	}
}

// deleteBasis removes the record off the UI goroutine.
func (m *Model) deleteBasis(mint string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()
		if err := m.store.Delete(reqCtx, mint); err != nil {
			return BasisDeletedMsg{Mint: mint, Err: err}
		}
		return BasisDeletedMsg{Mint: mint}
	}
}

func displayToken(symbol, mint string) string {
	if symbol != "" {
		return symbol
	}
	return shortenMint(mint)
}

func shortenMint(mint string) string {
	if len(mint) > 8 {
		return mint[:8] + "..."
	}
	return mint
}

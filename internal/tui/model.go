// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/starcatch/internal/game"
	"github.com/verte-zerg/starcatch/internal/leaderboard"
	"github.com/verte-zerg/starcatch/internal/model"
)

const (
	frameInterval = 100 * time.Millisecond
	storeTimeout  = 5 * time.Second
)

// RoundRecorder stores finished rounds for the stats command.
type RoundRecorder interface {
	InsertRound(ctx context.Context, round model.Round) (int64, error)
}

type tickMsg struct{ gen uint64 }

type spawnMsg struct{ gen uint64 }

type frameMsg struct{ gen uint64 }

type decayMsg struct {
	gen uint64
	seq uint64
}

type boardMsg struct {
	seq   uint64
	board []model.Entry
	err   error
}

type submitMsg struct {
	round  uint64
	result leaderboard.Result
	err    error
}

// Model implements the Bubble Tea game UI.
type Model struct {
	engine    *game.Engine
	submitter *leaderboard.Submitter
	history   RoundRecorder

	width  int
	height int

	name       textinput.Model
	board      []model.Entry
	status     string
	submitting bool
	submitted  bool
	last       model.Round
	// boardSeq advances on every submission; refresh results from an
	// older value are stale.
	boardSeq uint64
}

// NewModel constructs the game UI. history may be nil.
func NewModel(engine *game.Engine, submitter *leaderboard.Submitter, history RoundRecorder) *Model {
	name := textinput.New()
	name.Placeholder = "your name"
	name.CharLimit = leaderboard.MaxNameLen
	name.Width = leaderboard.MaxNameLen + 1
	name.Prompt = "Name: "
	return &Model{
		engine:    engine,
		submitter: submitter,
		history:   history,
		name:      name,
		board:     submitter.Board(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		if m.engine.Tick(msg.gen) {
			return m, m.finishRound()
		}
		if m.current(msg.gen) {
			return m, tickCmd(msg.gen)
		}
		return m, nil
	case spawnMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
		m.engine.Spawn(msg.gen)
		return m, spawnCmd(msg.gen, m.engine.Config().SpawnInterval)
	case frameMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
		m.engine.Advance(msg.gen, frameInterval)
		return m, frameCmd(msg.gen)
	case decayMsg:
		if m.engine.DecayCombo(msg.gen, msg.seq) && m.engine.Snapshot().Combo > 0 {
			return m, decayCmd(msg.gen, msg.seq, m.engine.Config().ComboWindow)
		}
		return m, nil
	case boardMsg:
		if msg.err != nil {
			logErrf("%v\n", msg.err)
		}
		if msg.seq != m.boardSeq {
			return m, nil
		}
		m.board = msg.board
		return m, nil
	case submitMsg:
		return m.handleSubmitted(msg), nil
	default:
		if m.engine.Phase() == model.PhaseOver && !m.submitted {
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) current(gen uint64) bool {
	return gen == m.engine.Generation() && m.engine.Phase() == model.PhasePlaying
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.engine.Phase() {
	case model.PhasePlaying:
		switch msg.Type {
		case tea.KeyEsc:
			m.engine.Close()
			m.status = "Round abandoned."
			return m, nil
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		}
		return m, nil
	case model.PhaseOver:
		if m.submitted {
			switch msg.Type {
			case tea.KeyEnter:
				return m, m.startRound()
			case tea.KeyEsc:
				m.engine.Close()
				return m, nil
			}
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyEsc:
			m.engine.Close()
			m.status = ""
			return m, nil
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	default:
		switch {
		case msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace:
			return m, m.startRound()
		case msg.Type == tea.KeyRunes && string(msg.Runes) == "q":
			return m, tea.Quit
		}
		return m, nil
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range runes {
		seq := m.engine.ComboSeq()
		if !m.engine.HitLabel(r) {
			continue
		}
		if m.engine.Phase() == model.PhaseOver {
			return m.finishRound()
		}
		if next := m.engine.ComboSeq(); next != seq && m.engine.Config().Mode == model.ModeCatch {
			cmds = append(cmds, decayCmd(m.engine.Generation(), next, m.engine.Config().ComboWindow))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) startRound() tea.Cmd {
	gen := m.engine.Start()
	m.status = ""
	m.submitted = false
	m.submitting = false
	m.name.Blur()
	m.name.Reset()
	cmds := []tea.Cmd{tickCmd(gen), frameCmd(gen)}
	if m.engine.Config().Mode == model.ModeCatch {
		m.engine.Spawn(gen)
		cmds = append(cmds, spawnCmd(gen, m.engine.Config().SpawnInterval))
	}
	return tea.Batch(cmds...)
}

func (m *Model) finishRound() tea.Cmd {
	round, ok := m.engine.Round()
	if !ok {
		return nil
	}
	m.last = round
	if m.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if _, err := m.history.InsertRound(ctx, round); err != nil {
			logErrf("failed to save round: %v\n", err)
		}
		cancel()
	}
	return tea.Batch(m.name.Focus(), m.refreshCmd())
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	name, err := leaderboard.NormalizeName(m.name.Value())
	if err != nil {
		m.status = "Please enter a name."
		return nil
	}
	m.submitting = true
	m.boardSeq++
	m.status = "Saving..."
	submitter := m.submitter
	round := m.engine.RoundID()
	score := m.last.Score
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		res, err := submitter.Submit(ctx, round, name, score)
		return submitMsg{round: round, result: res, err: err}
	}
}

func (m *Model) handleSubmitted(msg submitMsg) *Model {
	m.submitting = false
	if msg.round != m.engine.RoundID() {
		return m
	}
	switch {
	case errors.Is(msg.err, leaderboard.ErrInvalidName):
		m.status = "Please enter a name."
		return m
	case errors.Is(msg.err, leaderboard.ErrInFlight):
		return m
	case errors.Is(msg.err, leaderboard.ErrAlreadySubmitted):
		m.submitted = true
		m.status = "Score already saved."
		return m
	case msg.err != nil:
		m.status = fmt.Sprintf("Could not save: %v", msg.err)
		return m
	}
	m.board = msg.result.Board
	m.submitted = true
	m.name.Blur()
	switch {
	case msg.result.Err != nil && !msg.result.Persisted:
		logErrf("%v\n", msg.result.Err)
		m.status = "Leaderboard offline. Score shown locally."
	case msg.result.Err != nil:
		logErrf("%v\n", msg.result.Err)
		m.status = "Score saved."
	default:
		m.status = "Score saved!"
	}
	return m
}

func (m *Model) refreshCmd() tea.Cmd {
	submitter := m.submitter
	seq := m.boardSeq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		board, err := submitter.Refresh(ctx)
		return boardMsg{seq: seq, board: board, err: err}
	}
}

func tickCmd(gen uint64) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func spawnCmd(gen uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return spawnMsg{gen: gen}
	})
}

func frameCmd(gen uint64) tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func decayCmd(gen, seq uint64, window time.Duration) tea.Cmd {
	return tea.Tick(window, func(time.Time) tea.Msg {
		return decayMsg{gen: gen, seq: seq}
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

//go:build !no_bubbletea

package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/krau/RelayAny-Bot/core/upload"
)

var (
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	stageStyle = lipgloss.NewStyle().Bold(true)
)

type progressMsg struct {
	stage       string
	done, total int64
}

type progressErrMsg struct{ err error }

type progressDoneMsg struct{}

type relayModel struct {
	progress progress.Model
	fileName string
	stage    string
	done     int64
	total    int64
	err      error
	finished bool
}

func newRelayModel(fileName string) relayModel {
	return relayModel{
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		fileName: fileName,
		stage:    stageDownload,
	}
}

func (m relayModel) Init() tea.Cmd {
	return nil
}

func (m relayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = max(min(msg.Width-10, 80), 10)
		return m, nil

	case progressMsg:
		m.stage = msg.stage
		m.done = msg.done
		m.total = msg.total
		if msg.total <= 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(msg.done) / float64(msg.total))

	case progressErrMsg:
		m.err = msg.err
		return m, tea.Quit

	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		if m.finished {
			return m, nil
		}
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m relayModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  ❌ Error: %s\n\n", m.err.Error())
	}
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  📁 %s\n", m.fileName))
	sb.WriteString(fmt.Sprintf("  %s %s / %s\n\n",
		stageStyle.Render(m.stage),
		humanize.Bytes(uint64(max(m.done, 0))),
		humanize.Bytes(uint64(max(m.total, 0))),
	))
	sb.WriteString("  ")
	sb.WriteString(m.progress.View())
	sb.WriteString("\n\n")
	if m.finished {
		sb.WriteString("  √ Relay complete!\n\n")
	} else {
		sb.WriteString(helpStyle.Render("  Press Ctrl+C to cancel"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// RelayProgress draws the download and upload progress of one relay.
type RelayProgress struct {
	program *tea.Program
	cancel  context.CancelFunc
}

func NewRelayProgress(ctx context.Context, fileName string) *RelayProgress {
	ctx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(
		newRelayModel(fileName),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
	)
	return &RelayProgress{program: p, cancel: cancel}
}

func (rp *RelayProgress) Start() {
	go rp.program.Run()
}

// Stage returns a progress callback labelled with stage. It is nil on a
// nil RelayProgress.
func (rp *RelayProgress) Stage(stage string) upload.ProgressFunc {
	if rp == nil {
		return nil
	}
	return func(done, total int64) {
		rp.program.Send(progressMsg{stage: stage, done: done, total: total})
	}
}

func (rp *RelayProgress) SetError(err error) {
	rp.program.Send(progressErrMsg{err: err})
}

func (rp *RelayProgress) Done() {
	rp.program.Send(progressDoneMsg{})
}

func (rp *RelayProgress) Wait() {
	rp.program.Wait()
	rp.cancel()
}

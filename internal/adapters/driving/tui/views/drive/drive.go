// Package drive provides the drive browser view for the TUI.
package drive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-workspace/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
)

// tickInterval is how often upload progress and indexing ETAs re-render.
const tickInterval = 500 * time.Millisecond

// prompt identifies which line input is open.
type prompt int

const (
	promptNone prompt = iota
	promptUpload
	promptMkdir
	promptDelete
)

// View browses the drive and shows upload and indexing progress.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	bar    *status.Bar
	drive  driving.DriveService

	entries  []domain.DriveEntry
	selected int
	prompt   prompt
	line     textinput.Model
	spinner  spinner.Model
	progress progress.Model
	ticking  bool
	active   bool

	width  int
	height int
	ready  bool
}

// NewView creates a new drive view.
func NewView(s *styles.Styles, drive driving.DriveService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	line := textinput.New()
	line.CharLimit = 4096

	return &View{
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		bar:      status.NewBar(s, nil),
		drive:    drive,
		line:     line,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

// Init lists the current directory and starts the re-render tick.
func (v *View) Init() tea.Cmd {
	v.active = true
	cmds := []tea.Cmd{v.load(""), v.spinner.Tick}
	if !v.ticking {
		v.ticking = true
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return messages.DriveTick{} })
}

// load changes into dir, or re-lists the current directory when dir is empty.
func (v *View) load(dir string) tea.Cmd {
	svc := v.drive
	return func() tea.Msg {
		if svc == nil {
			return messages.DriveLoaded{Err: fmt.Errorf("drive service not available")}
		}
		ctx := context.Background()
		var err error
		if dir == "" {
			err = svc.Refresh(ctx)
		} else {
			err = svc.ChangeDir(ctx, dir)
		}
		return messages.DriveLoaded{Path: svc.Path(), Err: err}
	}
}

// Update handles messages for the drive view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DriveLoaded:
		if msg.Err != nil {
			v.bar.SetState(status.StateError, domain.UserMessage(msg.Err))
		}
		v.reload()
		return v, nil

	case messages.DriveTick:
		if !v.active {
			v.ticking = false
			return v, nil
		}
		// Listings refreshed by the auto-sync loop show up here too.
		v.reload()
		return v, tick()

	case messages.UploadDone:
		switch {
		case msg.Err != nil:
			text := errorMessage(msg.Err)
			if !isLocal(msg.Err) {
				if notice := v.drive.Notice(); notice != "" {
					text = notice
				}
			}
			v.bar.SetState(status.StateError, text)
		case msg.Result != nil && msg.Result.Partial:
			v.bar.SetState(status.StateError, "Some files failed: "+strings.Join(msg.Result.Failed, ", "))
		default:
			v.bar.SetState(status.StateNotice, "Upload complete")
		}
		v.reload()
		return v, nil

	case messages.DriveDeleted:
		switch {
		case msg.Err != nil:
			v.bar.SetState(status.StateError, domain.UserMessage(msg.Err))
		case msg.Result != nil && msg.Result.Partial:
			v.bar.SetState(status.StateError, "Could not delete: "+strings.Join(msg.Result.Failed, ", "))
		default:
			v.bar.SetState(status.StateNotice, "Deleted")
		}
		v.reload()
		return v, nil

	case messages.ErrorOccurred:
		v.bar.SetState(status.StateError, errorMessage(msg.Err))
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.prompt != promptNone {
			return v.handlePromptKey(msg)
		}
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

// errorMessage keeps local input errors readable and maps the rest.
func errorMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return domain.UserMessage(err)
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUploadInProgress) {
		return err.Error()
	}
	return domain.UserMessage(err)
}

// isLocal reports errors raised before the batch reached the backend.
func isLocal(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrQuotaExceeded) ||
		errors.Is(err, domain.ErrUploadInProgress)
}

// Leave stops the re-render tick once the view is no longer shown.
func (v *View) Leave() {
	v.active = false
	v.closePrompt()
}

func (v *View) reload() {
	if v.drive == nil {
		return
	}
	v.entries = v.drive.Listing()
	if v.selected >= len(v.entries) {
		v.selected = max(len(v.entries)-1, 0)
	}
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case keyStr == "enter", keyStr == "right", keyStr == "l":
		if e, ok := v.Selected(); ok && e.IsDir {
			return v, v.load(e.Path)
		}
	case keyStr == "backspace", keyStr == "left", keyStr == "h":
		if v.drive != nil && v.drive.Path() != "/" {
			return v, v.load(path.Dir(v.drive.Path()))
		}
	case keyStr == "u":
		return v, v.openPrompt(promptUpload, "local files, space separated")
	case keyStr == "m":
		return v, v.openPrompt(promptMkdir, "folder name")
	case keymap.Matches(keyStr, v.keymap.Delete):
		if e, ok := v.Selected(); ok {
			v.prompt = promptDelete
			v.bar.SetState(status.StateBusy, fmt.Sprintf("Delete %s? [y/N]", e.Name))
		}
	case keyStr == "s":
		return v, v.syncNow()
	case keymap.Matches(keyStr, v.keymap.Refresh):
		return v, v.load("")
	}
	return v, nil
}

func (v *View) openPrompt(p prompt, placeholder string) tea.Cmd {
	v.prompt = p
	v.line.Reset()
	v.line.Placeholder = placeholder
	return v.line.Focus()
}

func (v *View) closePrompt() {
	v.prompt = promptNone
	v.line.Blur()
	v.line.Reset()
}

func (v *View) handlePromptKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.prompt == promptDelete {
		v.prompt = promptNone
		if msg.String() != "y" {
			v.bar.Clear()
			return v, nil
		}
		e, ok := v.Selected()
		if !ok {
			return v, nil
		}
		return v, v.remove(e.Path)
	}

	switch msg.Type {
	case tea.KeyEsc:
		v.closePrompt()
		return v, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(v.line.Value())
		p := v.prompt
		v.closePrompt()
		if value == "" {
			return v, nil
		}
		if p == promptMkdir {
			return v, v.mkdir(value)
		}
		return v, v.upload(strings.Fields(value))
	}

	var cmd tea.Cmd
	v.line, cmd = v.line.Update(msg)
	return v, cmd
}

func (v *View) mkdir(name string) tea.Cmd {
	svc := v.drive
	return func() tea.Msg {
		if err := svc.Mkdir(context.Background(), name); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.DriveLoaded{Path: svc.Path()}
	}
}

func (v *View) remove(p string) tea.Cmd {
	svc := v.drive
	v.bar.SetState(status.StateBusy, "Deleting...")
	return func() tea.Msg {
		result, err := svc.Delete(context.Background(), []string{p})
		return messages.DriveDeleted{Result: result, Err: err}
	}
}

func (v *View) syncNow() tea.Cmd {
	svc := v.drive
	return func() tea.Msg {
		if err := svc.SyncNow(context.Background()); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.DriveLoaded{Path: svc.Path()}
	}
}

// upload opens the local files and sends them as one batch.
func (v *View) upload(paths []string) tea.Cmd {
	svc := v.drive
	v.bar.SetState(status.StateBusy, "Uploading...")
	return func() tea.Msg {
		files, closeAll, err := openFiles(paths)
		if err != nil {
			return messages.UploadDone{Err: err}
		}
		defer closeAll()
		result, err := svc.Upload(context.Background(), files)
		return messages.UploadDone{Result: result, Err: err}
	}
}

func openFiles(paths []string) ([]domain.UploadFile, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	files := make([]domain.UploadFile, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p) //nolint:gosec // user-selected file
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			closeAll()
			return nil, nil, fmt.Errorf("%w: %s is not a file", domain.ErrInvalidInput, p)
		}
		files = append(files, domain.UploadFile{Name: filepath.Base(p), Size: info.Size(), Content: f})
	}
	return files, closeAll, nil
}

// View renders the drive view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Drive"))
	b.WriteString("  ")
	b.WriteString(v.renderSync())
	b.WriteString("\n")
	if v.drive != nil {
		b.WriteString(v.styles.Subtitle.Render(v.drive.Path()))
	}
	b.WriteString("\n\n")

	if len(v.entries) == 0 {
		b.WriteString(v.styles.Muted.Render("(empty)"))
		b.WriteString("\n")
	}
	var indexing map[string]domain.IndexingEntry
	if v.drive != nil {
		indexing = v.drive.Indexing()
	}
	for i := range v.entries {
		b.WriteString(v.renderEntry(i, &v.entries[i], indexing))
		b.WriteString("\n")
	}

	if uploads := v.renderUploads(); uploads != "" {
		b.WriteString("\n")
		b.WriteString(uploads)
	}

	b.WriteString("\n")
	switch v.prompt {
	case promptUpload:
		b.WriteString("Upload: " + v.line.View() + "\n")
	case promptMkdir:
		b.WriteString("New folder: " + v.line.View() + "\n")
	case promptNone, promptDelete:
		b.WriteString(v.styles.Help.Render("[enter] open  [h] up  [u] upload  [m] mkdir  [d] delete  [s] sync  [esc] back"))
		b.WriteString("\n")
	}

	v.bar.SetWidth(v.width)
	b.WriteString(v.bar.View())
	return b.String()
}

func (v *View) renderSync() string {
	if v.drive == nil {
		return ""
	}
	state := v.drive.SyncState()
	label := "auto-sync " + string(state)
	if state == domain.SyncSyncing {
		label = v.spinner.View() + " " + label
	}
	return v.styles.SyncState(state).Render(label)
}

func (v *View) renderEntry(index int, e *domain.DriveEntry, indexing map[string]domain.IndexingEntry) string {
	name := e.Name
	if e.IsDir {
		name += "/"
	}

	var state string
	switch entry, tracked := indexing[e.Path]; {
	case e.IsDir:
	case e.Indexed:
		state = "indexed"
	case tracked && entry.Status == domain.IndexingPending:
		state = fmt.Sprintf("indexing %d%%", entry.ETAPercent)
	default:
		state = "pending"
	}

	line := fmt.Sprintf("%-40s %s", name, state)
	if index == v.selected {
		return v.styles.Selected.Render("> " + line)
	}
	if e.IsDir {
		return "  " + v.styles.Subtitle.Render(line)
	}
	return "  " + v.styles.Normal.Render(line)
}

func (v *View) renderUploads() string {
	if v.drive == nil {
		return ""
	}
	tasks := v.drive.Uploads()
	if len(tasks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(fmt.Sprintf("%s %s\n", v.progress.ViewAs(float64(t.ProgressPercent)/100), t.Filename))
	}
	return b.String()
}

// Selected returns the entry under the cursor.
func (v *View) Selected() (domain.DriveEntry, bool) {
	if v.selected < 0 || v.selected >= len(v.entries) {
		return domain.DriveEntry{}, false
	}
	return v.entries[v.selected], true
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.bar
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile implements the profile screen: display name editing and
// the profile-picture upload workflow.
package profile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/morganforge/driftchat-tui/internal/avatar"
	"github.com/morganforge/driftchat-tui/internal/model"
	"github.com/morganforge/driftchat-tui/internal/ui/components"
	"github.com/morganforge/driftchat-tui/internal/ui/styles"
)

// opTimeout bounds profile writes; uploads get a longer budget.
const (
	opTimeout     = 15 * time.Second
	uploadTimeout = 60 * time.Second
)

// Session is the slice of the session manager the profile screen uses.
type Session interface {
	UID() string
	Profile() model.UserProfile
	UpdateProfile(ctx context.Context, patch avatar.ProfilePatch) error
}

// DocStore mirrors profile fields into the user document.
type DocStore interface {
	UpdateUserDoc(ctx context.Context, uid string, patch map[string]any) error
}

// BackMsg asks the root model to return to the chat screen.
type BackMsg struct{}

// focusArea selects which input has the keyboard.
type focusArea int

const (
	focusName focusArea = iota
	focusFile
)

// nameSavedMsg reports the display-name save outcome.
type nameSavedMsg struct{ err error }

// uploadDoneMsg reports that the upload workflow finished; its toasts carry
// the details.
type uploadDoneMsg struct{}

// Model is the profile screen state.
type Model struct {
	theme    *styles.Theme
	session  Session
	docs     DocStore
	uploader *avatar.Uploader
	toasts   *components.ToastManager
	log      zerolog.Logger

	nameInput textinput.Model
	fileInput textinput.Model
	focus     focusArea
	spinner   spinner.Model
	saving    bool

	status string

	width  int
	height int
}

// Config carries the profile screen's collaborators.
type Config struct {
	Theme   *styles.Theme
	Session Session
	Docs    DocStore
	Blobs   avatar.BlobStore
	Toasts  *components.ToastManager
	Log     zerolog.Logger
}

// New creates the profile screen and its upload workflow.
func New(cfg Config) Model {
	current := cfg.Session.Profile()

	name := textinput.New()
	name.Placeholder = "display name"
	name.SetValue(current.DisplayName)
	name.Focus()

	file := textinput.New()
	file.Placeholder = "path to image (jpeg, png, webp)"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Workflow toasts go straight into the shared manager; it is safe to
	// call from the upload goroutine.
	toasts := cfg.Toasts
	uploader := avatar.NewUploader(avatar.Config{
		UID:      current.UID,
		Identity: cfg.Session,
		Docs:     cfg.Docs,
		Blobs:    cfg.Blobs,
		Notify: avatar.NotifierFunc(func(t avatar.Toast) {
			toasts.Add(components.FromWorkflow(t))
		}),
		Previews: avatar.NewTempFilePreviews(cfg.Log),
		Logger:   cfg.Log,
	}, current.PhotoURL)

	return Model{
		theme:     cfg.Theme,
		session:   cfg.Session,
		docs:      cfg.Docs,
		uploader:  uploader,
		toasts:    cfg.Toasts,
		log:       cfg.Log.With().Str("component", "profile").Logger(),
		nameInput: name,
		fileInput: file,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize records the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Unmount releases screen-owned resources: the upload workflow stops
// touching the display and queued toasts are dropped. In-flight network
// operations are left to finish.
func (m Model) Unmount() {
	m.uploader.Discard()
	m.toasts.Clear()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		case "tab", "shift+tab":
			return m.toggleFocus(), nil
		case "enter":
			if m.focus == focusName {
				return m.saveName()
			}
			return m.startUpload()
		}

	case nameSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = "Could not save the display name."
			m.log.Warn().Err(msg.err).Msg("display name save failed")
			return m, nil
		}
		m.status = "Display name saved."
		return m, nil

	case uploadDoneMsg:
		return m, nil

	case spinner.TickMsg:
		if m.saving || m.uploader.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.fileInput, cmd = m.fileInput.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() Model {
	if m.focus == focusName {
		m.focus = focusFile
		m.nameInput.Blur()
		m.fileInput.Focus()
	} else {
		m.focus = focusName
		m.fileInput.Blur()
		m.nameInput.Focus()
	}
	return m
}

// =============================================================================
// DISPLAY NAME
// =============================================================================

func (m Model) saveName() (Model, tea.Cmd) {
	name, err := model.ValidateDisplayName(m.nameInput.Value())
	if err != nil {
		m.status = "Display name must be 2-50 characters."
		return m, nil
	}

	session, docs, uid := m.session, m.docs, m.session.UID()
	m.saving = true
	m.status = ""

	save := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := session.UpdateProfile(ctx, avatar.ProfilePatch{DisplayName: &name}); err != nil {
			return nameSavedMsg{err: err}
		}
		err := docs.UpdateUserDoc(ctx, uid, map[string]any{
			"displayName": name,
			"updatedAt":   time.Now(),
		})
		return nameSavedMsg{err: err}
	}
	return m, tea.Batch(m.spinner.Tick, save)
}

// =============================================================================
// AVATAR UPLOAD
// =============================================================================

func (m Model) startUpload() (Model, tea.Cmd) {
	path := strings.TrimSpace(m.fileInput.Value())
	if path == "" {
		return m, nil
	}
	m.fileInput.Reset()
	m.status = ""

	uploader := m.uploader
	currentURL := m.session.Profile().PhotoURL
	toasts := m.toasts

	upload := func() tea.Msg {
		f, err := readImageFile(path)
		if err != nil {
			toasts.AddError("Cannot read file", "Check the path and try again.")
			return uploadDoneMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		// Outcome toasts come from the workflow itself.
		_ = uploader.SelectFile(ctx, f, currentURL)
		return uploadDoneMsg{}
	}
	return m, tea.Batch(m.spinner.Tick, upload)
}

// readImageFile loads a local image into the workflow's file shape. The MIME
// type is derived from the extension; unknown extensions are passed through
// and rejected by the workflow's validation.
func readImageFile(path string) (avatar.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return avatar.File{}, err
	}
	return avatar.File{
		Name:     filepath.Base(path),
		MIMEType: mimeForExtension(filepath.Ext(path)),
		Size:     int64(len(data)),
		Data:     data,
	}, nil
}

func mimeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg":
		return "image/jpg"
	case ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

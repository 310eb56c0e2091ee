package sink

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"
)

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	nvim          *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

// NewManager connects to the Neovim at $NVIM_LISTEN_ADDRESS or starts a new
// headless one.
func NewManager() (*Manager, error) {
	// Try to connect to a running instance first.
	if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" {
		v, err := nvim.Dial(addr)
		if err == nil {
			return &Manager{nvim: v}, nil
		}
	}

	tmpDir, err := os.MkdirTemp("", "amalgam-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	// Wait for the socket file to appear.
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &Manager{
		nvim:          v,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
	}
	if err := m.nvim.Command("set noswapfile"); err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to configure headless nvim: %w", err)
	}
	return m, nil
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
}

// WriteBuffer replaces the buffer for path with output and writes it.
func (m *Manager) WriteBuffer(path, output string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("could not create directory for %s: %w", path, err)
	}

	lines, eol := bufferLines(output)

	b := m.nvim.NewBatch()
	b.Command("edit! " + escapePath(absPath))
	b.SetBufferLines(0, 0, -1, true, lines)
	if eol {
		b.Command("setlocal endofline fixendofline")
	} else {
		b.Command("setlocal noendofline nofixendofline")
	}
	b.Command("write")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("nvim failed to write %s: %w", path, err)
	}
	return nil
}

// bufferLines splits output into buffer lines and reports whether it ended
// with a newline.
func bufferLines(output string) ([][]byte, bool) {
	eol := strings.HasSuffix(output, "\n")
	text := strings.TrimSuffix(output, "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]byte, len(parts))
	for i, s := range parts {
		lines[i] = []byte(s)
	}
	return lines, eol
}

func escapePath(path string) string {
	r := strings.NewReplacer(`\`, `\\`, " ", `\ `, "%", `\%`, "#", `\#`, "|", `\|`)
	return r.Replace(path)
}

type nvimSink struct {
	path    string
	connect func() (*Manager, error)
}

// Nvim writes the output to path through a Neovim buffer, so an attached
// editor sees the new content.
func Nvim(path string) Sink {
	return &nvimSink{path: path, connect: NewManager}
}

func (s *nvimSink) Name() string { return "nvim:" + s.path }

func (s *nvimSink) Write(output string) error {
	manager, err := s.connect()
	if err != nil {
		return err
	}
	defer manager.Close()
	return manager.WriteBuffer(s.path, output)
}

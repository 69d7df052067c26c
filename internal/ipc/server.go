package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/splittile/internal/config"
	"github.com/1broseidon/splittile/internal/daemon"
	"github.com/1broseidon/splittile/internal/runtimepath"
)

// Controller is the daemon side of the socket. Status and MailboxStats are
// read-only; Post and Reload are the only ways a client changes anything.
type Controller interface {
	Status() *daemon.Status
	MailboxStats() (posted, replaced uint64)
	Post(ev daemon.Event)
	Reload() (*config.LoadResult, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	startTime    time.Time
	files        []string
	filesMu      sync.RWMutex
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(ctrl Controller) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, ctrl), nil
}

// NewServerAt creates a new IPC server listening on socketPath.
func NewServerAt(socketPath string, ctrl Controller) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		startTime:  time.Now(),
	}
}

// SetConfigFiles records the config files currently in effect for status.
func (s *Server) SetConfigFiles(files []string) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()
	s.files = append([]string(nil), files...)
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(10 * time.Second))
	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetTree:
		return s.handleGetTree()
	case CommandToggleOrientation:
		return s.handleToggleOrientation()
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	st := s.ctrl.Status()
	if st == nil {
		return NewErrorResponse("layout not initialised yet")
	}

	windows := make([]string, len(st.Windows))
	for i, id := range st.Windows {
		windows[i] = daemon.FormatWindowID(id)
	}
	posted, replaced := s.ctrl.MailboxStats()

	s.filesMu.RLock()
	files := append([]string(nil), s.files...)
	s.filesMu.RUnlock()

	data := StatusData{
		Orientation:     st.Orientation.String(),
		Windows:         windows,
		WindowCount:     len(windows),
		Canvas:          st.Canvas,
		Events:          st.Events,
		MailboxPosted:   posted,
		MailboxReplaced: replaced,
		ConfigFiles:     files,
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:   true,
	}
	if st.Focus != nil {
		data.Focus = daemon.FormatWindowID(*st.Focus)
	}

	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleGetTree() *Response {
	st := s.ctrl.Status()
	if st == nil {
		return NewErrorResponse("layout not initialised yet")
	}

	resp, err := NewOKResponse(TreeData{
		Canvas:      st.Canvas,
		Orientation: st.Orientation.String(),
		Tree:        st.Tree,
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// handleToggleOrientation posts the toggle like the hotkey does. The
// orchestrator applies it asynchronously.
func (s *Server) handleToggleOrientation() *Response {
	log.Println("IPC: Received TOGGLE_ORIENTATION command")
	s.ctrl.Post(daemon.OrientationToggle())

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	res, err := s.ctrl.Reload()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.SetConfigFiles(res.Files)

	log.Println("IPC: Config reloaded successfully")

	resp, err := NewOKResponse(ReloadData{Files: res.Files})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

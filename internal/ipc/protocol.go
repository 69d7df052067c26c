package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/splittile/internal/daemon"
	"github.com/1broseidon/splittile/internal/tiling"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandGetTree           CommandType = "GET_TREE"
	CommandToggleOrientation CommandType = "TOGGLE_ORIENTATION"
	CommandReload            CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Orientation     string             `json:"orientation"`
	Focus           string             `json:"focus,omitempty"`
	Windows         []string           `json:"windows"`
	WindowCount     int                `json:"window_count"`
	Canvas          tiling.Rect        `json:"canvas"`
	Events          daemon.EventCounts `json:"events"`
	MailboxPosted   uint64             `json:"mailbox_posted"`
	MailboxReplaced uint64             `json:"mailbox_replaced"`
	ConfigFiles     []string           `json:"config_files,omitempty"`
	UptimeSeconds   int64              `json:"uptime_seconds"`
	DaemonRunning   bool               `json:"daemon_running"`
}

// TreeData represents the data returned by GET_TREE
type TreeData struct {
	Canvas      tiling.Rect      `json:"canvas"`
	Orientation string           `json:"orientation"`
	Tree        *tiling.NodeInfo `json:"tree"`
}

// ReloadData represents the data returned by RELOAD
type ReloadData struct {
	Files []string `json:"files"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

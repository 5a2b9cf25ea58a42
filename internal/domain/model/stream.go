package model

// ServerVersion is stamped by the build and reported to stream observers.
var ServerVersion = "0.0.0"

// StreamHello is the first frame an events subscriber receives.
type StreamHello struct {
	Ok            bool   `json:"ok"`
	ConnectionID  string `json:"connection_id"`
	ServerVersion string `json:"server_version"`
	Topic         string `json:"topic"`
}

// StreamClosed is sent before the server ends an events stream.
type StreamClosed struct {
	Reason string `json:"reason"`
	Code   string `json:"code,omitempty"` // "SHUTDOWN", "SUBSCRIBE_FAILED"
}

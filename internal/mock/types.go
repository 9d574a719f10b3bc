package mock

import "time"

// Config represents the mock backend configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`                         // Server port (default: 31310)
	Host    string  `json:"host" yaml:"host"`                         // Server host (default: localhost)
	Prefix  string  `json:"prefix,omitempty" yaml:"prefix,omitempty"` // API path prefix (default: /v1)
	OrgUID  string  `json:"orgUid,omitempty" yaml:"orgUid,omitempty"` // Home organization reported in x-org-uid
	APIKey  string  `json:"apiKey,omitempty" yaml:"apiKey,omitempty"` // Required x-api-key value, empty disables auth
	Routes  []Route `json:"routes,omitempty" yaml:"routes,omitempty"` // Static routes checked before the built-in backend
	Logging bool    `json:"logging" yaml:"logging"`                   // Enable request logging
}

// Route is a static response that overrides the built-in backend
type Route struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method      string            `json:"method" yaml:"method"`
	Path        string            `json:"path" yaml:"path"`                             // Relative to the prefix
	PathType    string            `json:"pathType,omitempty" yaml:"pathType,omitempty"` // exact, prefix, regex (default: exact)
	Status      int               `json:"status" yaml:"status"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile    string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	Delay       int               `json:"delay,omitempty" yaml:"delay,omitempty"` // Milliseconds
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       string            `json:"query"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	MatchedRule string            `json:"matchedRule"`
	Status      int               `json:"status"`
	Duration    time.Duration     `json:"duration"`
}

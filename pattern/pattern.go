// Package pattern holds the compiled regex catalog the scanner runs
// against plugin source files: secrets, network client code, shell
// network commands, and telemetry calls.
package pattern

import "regexp"

// Class tags a pattern by the kind of behavior it flags.
type Class string

const (
	ClassSecret      Class = "secret"
	ClassNetworkCode Class = "network-code"
	ClassShellNet    Class = "shell-network"
	ClassTelemetry   Class = "telemetry"
)

// Pattern is one compiled detection rule.
type Pattern struct {
	Class Class
	Name  string
	Re    *regexp.Regexp
}

// MaxFileSize and friends are security-relevant constants and, per the
// ambient configuration design, are never overridable by flag or file.
const (
	MaxFileSize = 2 * 1024 * 1024  // 2 MiB
	MaxRepoSize = 20 * 1024 * 1024 // 20 MiB
	MaxFiles    = 2500
)

// SkipDirs are directory names the walker never descends into.
var SkipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"__pycache__":  true,
	".gradle":      true,
	"build":        true,
	"dist":         true,
	"node_modules": true,
	".tmp":         true,
	".cache":       true,
}

// ContentDirs are the only directories the scanner considers.
var ContentDirs = map[string]bool{
	"commands": true,
	"hooks":    true,
	"agents":   true,
	"skills":   true,
}

// ScanExtensions are the file extensions the scanner tests against the
// pattern catalog; files with any other extension are skipped by the
// scanner even inside a content directory.
var ScanExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".sh": true, ".bash": true,
	".zsh": true, ".rb": true, ".go": true, ".rs": true, ".ps1": true,
}

// TextExtensions are whitelisted as known-text for the walker's binary
// detection shortcut.
var TextExtensions = map[string]bool{
	".md": true, ".txt": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".py": true, ".js": true, ".ts": true, ".jsx": true,
	".tsx": true, ".sh": true, ".bash": true, ".zsh": true, ".rb": true,
	".go": true, ".rs": true, ".ps1": true, ".java": true, ".c": true,
	".h": true, ".cpp": true, ".cc": true, ".hpp": true, ".cfg": true,
	".ini": true, ".env": true,
}

// DisallowedExtensions are hard errors regardless of content.
var DisallowedExtensions = map[string]bool{
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".o": true,
	".a": true, ".bin": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true, ".rar": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true,
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".pdf":  true,
	".wasm": true,
}

// All is the flat, ordered slice of compiled patterns built once at
// package init. The scan loop stays a single nested iteration over
// file -> line -> pattern; there is no class-specific dispatch type.
var All []Pattern

func add(class Class, name, expr string) {
	All = append(All, Pattern{Class: class, Name: name, Re: regexp.MustCompile(expr)})
}

func init() {
	// Secrets
	add(ClassSecret, "AWS access key", `AKIA[0-9A-Z]{16}`)
	add(ClassSecret, "GitHub personal access token", `ghp_[A-Za-z0-9_]{20,}|github_pat_[A-Za-z0-9_]{20,}`)
	add(ClassSecret, "GitHub OAuth token", `gho_[A-Za-z0-9_]{20,}`)
	add(ClassSecret, "Slack token", `xox[baprs]-[A-Za-z0-9-]{10,}`)
	add(ClassSecret, "API key assignment", `(?i)\b(api[_-]?key|api[_-]?secret)\b\s*[:=]\s*['"][^'"]{16,}['"]`)
	add(ClassSecret, "Token assignment", `(?i)\btoken\b\s*[:=]\s*['"][^'"]{16,}['"]`)
	add(ClassSecret, "Password assignment", `(?i)\b(password|passwd)\b\s*[:=]\s*['"][^'"]{16,}['"]`)
	add(ClassSecret, "Secret assignment", `(?i)\bsecret\b\s*[:=]\s*['"][^'"]{16,}['"]`)
	add(ClassSecret, "Private key block", `-----BEGIN [A-Z ]*PRIVATE KEY-----`)
	add(ClassSecret, "Bearer token", `(?i)Bearer\s+[A-Za-z0-9\-._~+/]{20,}=*`)

	// Network-code (anchored at start-of-statement where meaningful)
	add(ClassNetworkCode, "Python requests import", `^\s*(import\s+requests|from\s+requests\s+import)`)
	add(ClassNetworkCode, "Python urllib import", `^\s*import\s+urllib`)
	add(ClassNetworkCode, "Node fetch/http call", `^\s*(const|let|var)?\s*.*=?\s*(fetch|https?\.request|https?\.get)\s*\(`)
	add(ClassNetworkCode, "Node require http/https/net", `^\s*(const|let|var)\s+.*require\(['"](https?|net)['"]\)`)
	add(ClassNetworkCode, "Go net/http import", `^\s*"net/http"`)
	add(ClassNetworkCode, "Go net import", `^\s*"net"$`)
	add(ClassNetworkCode, "Ruby net/http require", `^\s*require\s+['"]net/http['"]`)
	add(ClassNetworkCode, "Rust reqwest use", `^\s*use\s+reqwest`)
	add(ClassNetworkCode, "WebSocket constructor", `new\s+WebSocket\s*\(`)
	add(ClassNetworkCode, "raw socket import", `^\s*import\s+socket\b`)

	// Shell-network
	add(ClassShellNet, "curl invocation", `(^|[;&|]\s*)curl\s`)
	add(ClassShellNet, "wget invocation", `(^|[;&|]\s*)wget\s`)
	add(ClassShellNet, "netcat invocation", `(^|[;&|]\s*)(nc|ncat)\s`)
	add(ClassShellNet, "socat invocation", `(^|[;&|]\s*)socat\s`)
	add(ClassShellNet, "ssh invocation", `(^|[;&|]\s*)ssh\s`)
	add(ClassShellNet, "scp invocation", `(^|[;&|]\s*)scp\s`)
	add(ClassShellNet, "rsync remote invocation", `(^|[;&|]\s*)rsync\s+.*:`)
	add(ClassShellNet, "telnet invocation", `(^|[;&|]\s*)telnet\s`)
	add(ClassShellNet, "PowerShell Invoke-WebRequest", `Invoke-WebRequest\b`)
	add(ClassShellNet, "PowerShell Invoke-RestMethod", `Invoke-RestMethod\b`)

	// Telemetry
	add(ClassTelemetry, "known analytics host", `(?i)https?://[^\s'"]*(segment\.io|mixpanel\.com|amplitude\.com|google-analytics\.com|sentry\.io)[^\s'"]*`)
	add(ClassTelemetry, "capture call", `\.capture\s*\(`)
	add(ClassTelemetry, "analytics.track call", `analytics\.track\s*\(`)
	add(ClassTelemetry, "Sentry.init call", `Sentry\.init\s*\(`)
}

// URLAuthority extracts the host authority of the first http(s) URL found
// in a line, used by the scanner to populate detected domains.
var URLAuthority = regexp.MustCompile(`https?://([^/\s'"]+)`)

// IsComment reports whether a line's first non-whitespace byte marks it as
// a comment in one of the languages this catalog covers.
func IsComment(line string) bool {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i >= len(line) {
		return false
	}
	switch line[i] {
	case '#', '*':
		return true
	case '/':
		return i+1 < len(line) && line[i+1] == '/'
	}
	return false
}

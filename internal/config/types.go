package config

import "time"

// Config is the root configuration object. Loaded once at startup and
// treated as read-only afterwards; editing the file requires a restart.
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Printer   PrinterConfig             `yaml:"printer"`
	Header    HeaderConfig              `yaml:"header"`
	Footer    FooterConfig              `yaml:"footer"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Journal   JournalConfig             `yaml:"journal"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	// MaxBodySize caps webhook request bodies in bytes (default: 1MB).
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// PrinterConfig identifies the physical device and bounds dispatch.
type PrinterConfig struct {
	// USBVendorID / USBProductID accept hex ("0x04b8") or decimal values.
	USBVendorID  HexID `yaml:"usb_vendor_id"`
	USBProductID HexID `yaml:"usb_product_id"`

	// Transport selects the device transport: "console" (render to stdout,
	// the default when no hardware is attached) or "network" (JetDirect raw
	// TCP, usually port 9100).
	Transport string `yaml:"transport"`

	// Address is the host:port of a network printer. Ignored for console.
	Address string `yaml:"address,omitempty"`

	// Width is the printable column count (32 or 48 for common thermal
	// printers; default 48 for 80mm paper).
	Width int `yaml:"width,omitempty"`

	// QueueDepth bounds the FIFO of jobs waiting on the device (default 16).
	// A full queue rejects new jobs rather than blocking the webhook.
	QueueDepth int `yaml:"queue_depth,omitempty"`

	// JobTimeout bounds a single job's hold on the device (default 10s).
	// On expiry the job is abandoned and reported as a transport failure.
	JobTimeout time.Duration `yaml:"job_timeout,omitempty"`
}

// HeaderConfig is the static receipt header. Each field is three-state:
// unset falls back to the built-in default, an explicit empty string omits
// the line entirely, and any other value prints as-is.
type HeaderConfig struct {
	LogoPath     Optional `yaml:"logo_path"`
	CompanyName  Optional `yaml:"company_name"`
	AddressLine1 Optional `yaml:"address_line1"`
	AddressLine2 Optional `yaml:"address_line2"`
	Phone        Optional `yaml:"phone"`
	URL          Optional `yaml:"url"`
	Tagline      Optional `yaml:"tagline"`
}

// FooterConfig is the static receipt footer.
type FooterConfig struct {
	Disabled bool     `yaml:"disabled"`
	Text     Optional `yaml:"text"`
}

// ProviderConfig configures a single webhook provider.
type ProviderConfig struct {
	Disabled      bool   `yaml:"disabled"`
	SigningSecret string `yaml:"signing_secret"`

	// MaxTitleLength / MaxDescriptionLength cap rendered field sizes.
	// Overruns truncate with a visible "..." marker.
	MaxTitleLength       int `yaml:"max_title_length,omitempty"`
	MaxDescriptionLength int `yaml:"max_description_length,omitempty"`
}

// JournalConfig locates the print-job journal database.
type JournalConfig struct {
	// Path of the SQLite file. Empty disables the journal.
	Path string `yaml:"path"`
}

// Built-in defaults applied by Load for unset fields.
const (
	DefaultListen      = ":8080"
	DefaultLogLevel    = "INFO"
	DefaultMaxBodySize = 1048576 // 1 MB

	DefaultTransport  = "console"
	DefaultWidth      = 48
	DefaultQueueDepth = 16
	DefaultJobTimeout = 10 * time.Second

	DefaultCompanyName = "PAPERJET"
	DefaultTagline     = "Your tickets, on paper"
	DefaultFooterText  = "Thank you"

	DefaultMaxTitleLength       = 200
	DefaultMaxDescriptionLength = 1000
)

// Package config loads the splitter configuration from a YAML file with an
// environment overlay for credentials and the member name mapping.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything one invocation needs. YAML keys mirror the
// long-standing configs.yml layout.
type Config struct {
	// Bill analysis
	BillPath              string            `yaml:"bill_path"`
	SummaryPath           string            `yaml:"summary_path"`
	BillingMonthPath      string            `yaml:"billing_month_path"`
	PageNumber            int               `yaml:"page_number"` // zero-based page of the summary table
	FamilyCount           int               `yaml:"family_count"`
	PlanCostForAllMembers bool              `yaml:"plan_cost_for_all_members"`
	MemberNumbers         map[string]string `yaml:"member_numbers"` // phone -> display name
	OCRFallback           bool              `yaml:"ocr_fallback"`

	// Bill retrieval (IMAP)
	IMAPAddr      string `yaml:"imap_addr"`
	Subject       string `yaml:"subject"`
	LookbackDays  int    `yaml:"lookback_days"`
	AttachmentDir string `yaml:"attachment_dir"`

	// Summary email (SMTP)
	SMTPHost          string `yaml:"smtp_host"`
	SMTPPort          int    `yaml:"smtp_port"`
	SummarySubject    string `yaml:"summary_subject"`
	DeleteAttachments bool   `yaml:"delete_attachments"`

	// From the environment, never from YAML
	User      string `yaml:"-"` // USER
	Password  string `yaml:"-"` // GAPP_PASSWORD
	Recipient string `yaml:"-"` // SUMMARY_EMAIL_RECIPIENT
}

// Load reads the YAML config file, applies defaults, and overlays
// environment variables. A .env file is honored when present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	// Defaulted before unmarshal so an explicit page_number: 0 (a valid
	// zero-based index) is not mistaken for an unset field.
	cfg := &Config{PageNumber: 1}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Info("config loaded", "path", path, "family_count", cfg.FamilyCount,
		"plan_cost_for_all_members", cfg.PlanCostForAllMembers)
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SummaryPath == "" {
		c.SummaryPath = "summarized_bill.csv"
	}
	if c.BillingMonthPath == "" {
		c.BillingMonthPath = "billing_month.txt"
	}
	if c.IMAPAddr == "" {
		c.IMAPAddr = "imap.gmail.com:993"
	}
	if c.LookbackDays == 0 {
		c.LookbackDays = 31
	}
	if c.AttachmentDir == "" {
		c.AttachmentDir = "attachments"
	}
	if c.SMTPHost == "" {
		c.SMTPHost = "smtp.gmail.com"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 465
	}
	if c.SummarySubject == "" {
		c.SummarySubject = "Phone bill summary"
	}
}

func (c *Config) applyEnv() {
	// Missing .env is fine; real environment variables still apply.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	c.User = os.Getenv("USER")
	c.Password = os.Getenv("GAPP_PASSWORD")
	c.Recipient = os.Getenv("SUMMARY_EMAIL_RECIPIENT")

	// MEMBER_NAMES is a JSON object of phone -> name pairs; it overrides
	// the member_numbers mapping from YAML.
	if raw := os.Getenv("MEMBER_NAMES"); raw != "" {
		names := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			slog.Warn("MEMBER_NAMES is not valid JSON, ignoring", "err", err)
		} else {
			c.MemberNumbers = names
		}
	}
}

func (c *Config) validate() error {
	if c.FamilyCount <= 0 {
		return fmt.Errorf("family_count must be positive, got %d", c.FamilyCount)
	}
	if c.PageNumber < 0 {
		return fmt.Errorf("page_number must not be negative, got %d", c.PageNumber)
	}
	return nil
}

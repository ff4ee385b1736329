package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Section names used for change notifications.
const (
	SectionPolling = "polling"
	SectionStock   = "stock"
	SectionMarket  = "market"
	SectionGitLab  = "gitlab"
	SectionZentao  = "zentao"
)

// Sections lists every settings section in file order.
var Sections = []string{SectionPolling, SectionStock, SectionMarket, SectionGitLab, SectionZentao}

// Settings is the bar configuration loaded from YAML.
type Settings struct {
	Polling PollingSettings `yaml:"polling"`
	Stock   StockSettings   `yaml:"stock"`
	Market  MarketSettings  `yaml:"market"`
	GitLab  GitLabSettings  `yaml:"gitlab"`
	Zentao  ZentaoSettings  `yaml:"zentao"`
}

// PollingSettings are the cadence values shared by every job, in seconds.
type PollingSettings struct {
	Interval      int `yaml:"interval" validate:"min=1"`
	IdleInterval  int `yaml:"idle_interval" validate:"min=1"`
	RetryInterval int `yaml:"retry_interval" validate:"min=0"`
	DebounceMS    int `yaml:"debounce_ms" validate:"min=0"`
}

// StockSettings configure the quote job.
type StockSettings struct {
	Symbols   []string          `yaml:"symbols" validate:"dive,required"`
	Aliases   map[string]string `yaml:"aliases"`
	Template  string            `yaml:"template"`
	Separator string            `yaml:"separator"`
}

// MarketSettings configure the trading-hours gate.
type MarketSettings struct {
	Timezone   string   `yaml:"timezone" validate:"required"`
	Windows    []Window `yaml:"windows" validate:"required,min=1,dive"`
	HolidayURL string   `yaml:"holiday_url" validate:"omitempty,url"`
}

// Window is an inclusive HH:MM range of wall-clock time.
type Window struct {
	Start string `yaml:"start" validate:"required,datetime=15:04"`
	End   string `yaml:"end" validate:"required,datetime=15:04"`
}

// GitLabSettings configure the merge-request job.
type GitLabSettings struct {
	Template string          `yaml:"template"`
	Projects []GitLabProject `yaml:"projects" validate:"dive"`
}

// GitLabProject is one watched project.
type GitLabProject struct {
	BaseURL     string `yaml:"base_url" validate:"omitempty,url"`
	ProjectID   string `yaml:"project_id"`
	AccessToken string `yaml:"access_token"`
}

// ZentaoSettings configure the task job.
type ZentaoSettings struct {
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
	Template string `yaml:"template"`
}

// Intervals returns the polling cadence as durations. A zero retry interval means the normal one.
func (p PollingSettings) Intervals() (interval, idle, retry time.Duration) {
	interval = time.Duration(p.Interval) * time.Second
	idle = time.Duration(p.IdleInterval) * time.Second
	retry = time.Duration(p.RetryInterval) * time.Second
	if retry == 0 {
		retry = interval
	}
	return interval, idle, retry
}

// Debounce returns the config-change debounce window.
func (p PollingSettings) Debounce() time.Duration {
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// Location resolves the market timezone.
func (m MarketSettings) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Polling.Interval == 0 {
		s.Polling.Interval = 5
	}
	if s.Polling.IdleInterval == 0 {
		s.Polling.IdleInterval = 30
	}
	if s.Polling.DebounceMS == 0 {
		s.Polling.DebounceMS = 500
	}
	if s.Stock.Template == "" {
		s.Stock.Template = " {price} {percent}"
	}
	if s.Stock.Separator == "" {
		s.Stock.Separator = " · "
	}
	if s.Stock.Aliases == nil {
		s.Stock.Aliases = map[string]string{}
	}
	if s.Market.Timezone == "" {
		s.Market.Timezone = "Asia/Shanghai"
	}
	if len(s.Market.Windows) == 0 {
		s.Market.Windows = []Window{
			{Start: "09:25", End: "11:35"},
			{Start: "13:00", End: "15:05"},
		}
	}
	if s.Market.HolidayURL == "" {
		s.Market.HolidayURL = "https://timor.tech/api/holiday/year/"
	}
	if s.GitLab.Template == "" {
		s.GitLab.Template = "MR {count}"
	}
	if s.Zentao.Template == "" {
		s.Zentao.Template = "Tasks {wait}/{doing}"
	}
}

var validate = validator.New()

// Validate checks field constraints once, at load time.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if _, err := s.Market.Location(); err != nil {
		return fmt.Errorf("invalid settings: market timezone: %w", err)
	}
	for _, w := range s.Market.Windows {
		start, _ := time.Parse("15:04", w.Start)
		end, _ := time.Parse("15:04", w.End)
		if end.Before(start) {
			return fmt.Errorf("invalid settings: market window %s-%s ends before it starts", w.Start, w.End)
		}
	}
	return nil
}

// ParseSettings decodes YAML, applies defaults and validates.
func ParseSettings(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSettings reads the settings file. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

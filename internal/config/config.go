package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML config file
	OutputDir  string // Where the CSV/JSON datasets are written
	Port       string
}

// SiteConfig holds all target-site specific settings (from YAML)
type SiteConfig struct {
	MenuURL string `yaml:"menu_url"`
	// IncludeLastLocation visits the final entry of the location list too.
	// Off by default: the crawl has always stopped one short of the end.
	IncludeLastLocation bool      `yaml:"include_last_location"`
	Headless            bool      `yaml:"headless"`
	Selectors           Selectors `yaml:"selectors"`
	Timeouts            Timeouts  `yaml:"timeouts"`
}

type Selectors struct {
	ConsentButton     string `yaml:"consent_button"`
	LocationGrid      string `yaml:"location_grid"`
	LocationButton    string `yaml:"location_button"`
	LocationName      string `yaml:"location_name"`
	Section           string `yaml:"section"`
	SectionMarker     string `yaml:"section_marker"`
	ExpansionToggle   string `yaml:"expansion_toggle"`
	ToggleLabel       string `yaml:"toggle_label"`
	ToggleActiveClass string `yaml:"toggle_active_class"`
	ExpandedContent   string `yaml:"expanded_content"`
	MenuItem          string `yaml:"menu_item"`
	FoodName          string `yaml:"food_name"`
	Allergens         string `yaml:"allergens"`
	NutritionPanel    string `yaml:"nutrition_panel"`
	CloseButton       string `yaml:"close_button"`
}

// Timeouts bound every wait the crawler performs.
type Timeouts struct {
	Navigation      time.Duration `yaml:"navigation"`
	Action          time.Duration `yaml:"action"`
	Consent         time.Duration `yaml:"consent"`
	LocationGrid    time.Duration `yaml:"location_grid"`
	Menu            time.Duration `yaml:"menu"`
	ExpandedContent time.Duration `yaml:"expanded_content"`
	Nutrition       time.Duration `yaml:"nutrition"`
	DialogClose     time.Duration `yaml:"dialog_close"`
}

// DefaultSiteConfig returns the settings for the OSU Nutrislice catalog.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		MenuURL:  "https://osu.nutrislice.com/menu/",
		Headless: true,
		Selectors: Selectors{
			ConsentButton:     "button.primary",
			LocationGrid:      "ul.grid",
			LocationButton:    "button.content",
			LocationName:      "strong.name",
			Section:           "li.menu-station",
			SectionMarker:     "div[id]",
			ExpansionToggle:   "button.expansion-toggle",
			ToggleLabel:       "span",
			ToggleActiveClass: "button-active",
			ExpandedContent:   "div.expanded-content",
			MenuItem:          "li.menu-item",
			FoodName:          ".food-name",
			Allergens:         ".price-and-cal .allergens",
			NutritionPanel:    ".nutrition-ingredients",
			CloseButton:       "ns-button[matdialogclose].close-button",
		},
		Timeouts: Timeouts{
			Navigation:      60 * time.Second,
			Action:          10 * time.Second,
			Consent:         5 * time.Second,
			LocationGrid:    5 * time.Second,
			Menu:            15 * time.Second,
			ExpandedContent: 500 * time.Millisecond,
			Nutrition:       3 * time.Second,
			DialogClose:     5 * time.Second,
		},
	}
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	cfg := AppConfig{
		DBPath:     os.Getenv("DB_PATH"),
		ConfigPath: os.Getenv("CONFIG_PATH"),
		OutputDir:  os.Getenv("OUTPUT_DIR"),
		Port:       os.Getenv("PORT"),
	}

	// Set defaults if not provided
	if cfg.DBPath == "" {
		cfg.DBPath = "./local-data/menu.db"
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = "config.yaml"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "public/data"
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}

	return cfg, nil
}

// LoadSiteConfig reads the YAML file on top of DefaultSiteConfig.
// A missing file is not an error; the defaults are returned as-is.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	cfg := DefaultSiteConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if cfg.MenuURL == "" {
		return nil, fmt.Errorf("config '%s': menu_url must not be empty", path)
	}
	return cfg, nil
}

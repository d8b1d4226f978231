package company

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/workroomhq/appkit/internal/flagx"
	"github.com/workroomhq/appkit/internal/shared"
)

// Config holds runtime settings for one served company. One instance is
// loaded per company at admission time and passed by reference; nothing
// here is process-global.
//
// Fields:
//   - CompanyID: the tenant id this config belongs to.
//   - Status: lifecycle status at load time (see Status* constants).
//   - Domain: company subdomain used for client-facing URLs.
//   - MysqlHost / MysqlUser / MysqlPass: base coordinates of the company
//     database, before sharding postfix resolution.
//   - ManticoreHost: base coordinate of the company search service.
//   - SenderHost: base coordinate of the websocket sender service.
type Config struct {
	CompanyID     int64
	Status        int
	Domain        string
	MysqlHost     string
	MysqlUser     string
	MysqlPass     string
	ManticoreHost string
	SenderHost    string
}

// LoadDefaults populates development defaults. Production installations
// always carry a per-company JSON file.
func (c *Config) LoadDefaults() {
	c.Status = StatusActive
	c.Domain = "localhost"
	c.MysqlHost = "mysql"
	c.MysqlUser = "root"
	c.MysqlPass = "root"
	c.ManticoreHost = "manticore"
	c.SenderHost = "sender"
}

// LoadConfig builds the config of one company by applying defaults, then
// the company's JSON file from configDir, then command-line flags.
// An empty configDir falls back to the -c/-config flag. A missing file
// means the company is not served by this node.
func LoadConfig(companyID int64, configDir string) (*Config, error) {
	cfg := &Config{CompanyID: companyID}
	cfg.LoadDefaults()
	if configDir == "" {
		configDir = flagx.ConfigPathFlags()
	}
	if err := parseJSON(cfg, configDir); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}

// jsonConfig is the unmarshalling DTO for the per-company file.
type jsonConfig struct {
	Status        *int   `json:"status"`
	Domain        string `json:"domain"`
	MysqlHost     string `json:"mysql_host"`
	MysqlUser     string `json:"mysql_user"`
	MysqlPass     string `json:"mysql_pass"`
	ManticoreHost string `json:"manticore_host"`
	SenderHost    string `json:"sender_host"`
}

// parseJSON overlays values from "<company_id>_company.json". The file
// name is part of the deployment contract with the provisioning service.
func parseJSON(cfg *Config, configDir string) error {
	if configDir == "" {
		return nil
	}

	path := filepath.Join(configDir, strconv.FormatInt(cfg.CompanyID, 10)+"_company.json")
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: company %d", shared.ErrCompanyNotServed, cfg.CompanyID)
	}
	if err != nil {
		return err
	}

	var c jsonConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrCompanyConfigBroken, err)
	}

	if c.Status != nil {
		cfg.Status = *c.Status
	}
	if c.Domain != "" {
		cfg.Domain = c.Domain
	}
	if c.MysqlHost != "" {
		cfg.MysqlHost = c.MysqlHost
	}
	if c.MysqlUser != "" {
		cfg.MysqlUser = c.MysqlUser
	}
	if c.MysqlPass != "" {
		cfg.MysqlPass = c.MysqlPass
	}
	if c.ManticoreHost != "" {
		cfg.ManticoreHost = c.ManticoreHost
	}
	if c.SenderHost != "" {
		cfg.SenderHost = c.SenderHost
	}
	return nil
}

// parseFlags overlays a subset of the company config from command-line
// flags, for local runs against a single company.
//
//	-m string   mysql base host
//	-n string   manticore base host
//	-w string   sender base host
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-n", "-w"})

	fs := flag.NewFlagSet("company", flag.ContinueOnError)
	fs.StringVar(&cfg.MysqlHost, "m", cfg.MysqlHost, "mysql base host")
	fs.StringVar(&cfg.ManticoreHost, "n", cfg.ManticoreHost, "manticore base host")
	fs.StringVar(&cfg.SenderHost, "w", cfg.SenderHost, "sender base host")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// TenantFromConfig derives the tenant context of a loaded company.
func TenantFromConfig(cfg *Config) Tenant {
	return NewTenant(cfg.CompanyID, cfg.Status)
}

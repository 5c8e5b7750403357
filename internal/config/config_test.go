package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.DB.GormEngine != GormEngineMySQL {
		t.Errorf("DB.GormEngine = %v, want %v", cfg.DB.GormEngine, GormEngineMySQL)
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090}}`
	t.Setenv("STARTER_KIT_CONFIG_JSON", jsonOverride)

	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Test Override" {
		t.Errorf("Title = %v, want %v", cfg.Title, "Test Override")
	}

	if cfg.Webserver.Port != 9090 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 9090)
	}

	// fields absent from the override keep their file values
	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should keep its file value")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
		},
		{
			name: "valid config with postgres engine",
			config: Config{
				DB: DB{GormEngine: GormEnginePostgres},
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{
					Port: 0,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "",
				},
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "unknown database engine",
			config: Config{
				DB: DB{GormEngine: "sqlserver"},
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: ErrUnknownGormEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.config)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}

				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config

	ApplyDefaults(&cfg)

	if cfg.Webserver.ShutDownTime != 5 {
		t.Errorf("ShutDownTime = %v, want 5", cfg.Webserver.ShutDownTime)
	}

	if cfg.Webserver.Session.ExpiryTime != 2*time.Hour {
		t.Errorf("Session.ExpiryTime = %v, want 2h", cfg.Webserver.Session.ExpiryTime)
	}

	if cfg.Webserver.Session.RememberExpiryTime != 30*24*time.Hour {
		t.Errorf("Session.RememberExpiryTime = %v, want 720h", cfg.Webserver.Session.RememberExpiryTime)
	}

	if cfg.DB.GormEngine != GormEngineMySQL {
		t.Errorf("DB.GormEngine = %v, want %v", cfg.DB.GormEngine, GormEngineMySQL)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		DB: DB{GormEngine: GormEnginePostgres},
		Webserver: Webserver{
			ShutDownTime: 10,
			Session: Session{
				ExpiryTime:         time.Hour,
				RememberExpiryTime: 48 * time.Hour,
			},
		},
	}

	ApplyDefaults(&cfg)

	if cfg.Webserver.ShutDownTime != 10 {
		t.Errorf("ShutDownTime = %v, want 10", cfg.Webserver.ShutDownTime)
	}

	if cfg.Webserver.Session.ExpiryTime != time.Hour {
		t.Errorf("Session.ExpiryTime = %v, want 1h", cfg.Webserver.Session.ExpiryTime)
	}

	if cfg.DB.GormEngine != GormEnginePostgres {
		t.Errorf("DB.GormEngine = %v, want %v", cfg.DB.GormEngine, GormEnginePostgres)
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	tomlStr, err := DumpConfig(cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if !strings.Contains(tomlStr, "Test") {
		t.Error("DumpConfig() output should contain Title")
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	jsonStr, err := DumpConfigJSON(cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if !strings.Contains(jsonStr, "Test") {
		t.Error("DumpConfigJSON() output should contain Title")
	}
}

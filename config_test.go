package powermenu_test

import (
	"strings"
	"testing"

	powermenu "github.com/goliatone/go-powermenu"
	"github.com/goliatone/go-powermenu/lockstate"
)

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := powermenu.DecodeConfig(nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg != powermenu.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestDecodeConfigOverlaysAndTrims(t *testing.T) {
	cfg, err := powermenu.DecodeConfig(map[string]any{
		"power_control_enabled": false,
		"component":             "  lockscreen.powermenu ",
		"rule": map[string]any{
			"expression": " unlocked ",
		},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.PowerControlEnabled {
		t.Fatalf("expected power control disabled")
	}
	if cfg.Component != "lockscreen.powermenu" {
		t.Fatalf("expected trimmed component, got %q", cfg.Component)
	}
	if cfg.SettingKey != powermenu.SettingLockscreenPowerMenu {
		t.Fatalf("expected default setting key, got %q", cfg.SettingKey)
	}
	if cfg.Rule.Engine != powermenu.EngineExpr || cfg.Rule.Expression != "unlocked" {
		t.Fatalf("unexpected rule: %+v", cfg.Rule)
	}
}

func TestDecodeConfigRejectsUnknownAndInvalid(t *testing.T) {
	if _, err := powermenu.DecodeConfig(map[string]any{"power_control": true}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	_, err := powermenu.DecodeConfig(map[string]any{
		"component": " ",
		"rule":      map[string]any{"engine": "lua"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"component is required", `rule.engine "lua" is not supported`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestParseConfigYAML(t *testing.T) {
	doc := []byte(`
power_control_enabled: true
component: oem.powermenu
setting_key: oem_power_menu
rule:
  engine: cel
  expression: "!(locked && secure && power_menu == 0)"
`)
	cfg, err := powermenu.ParseConfig(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.PowerControlEnabled || cfg.Component != "oem.powermenu" || cfg.SettingKey != "oem_power_menu" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Rule.Engine != powermenu.EngineCEL {
		t.Fatalf("expected cel engine, got %q", cfg.Rule.Engine)
	}

	if _, err := powermenu.ParseConfig([]byte("rule: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestFromConfigBuildsSignal(t *testing.T) {
	ctrl := lockstate.NewController(lockstate.WithInitialState(powermenu.LockState{SecureMethod: true}))
	prefs := newPrefStore()
	prefs.set("oem_power_menu", 0)

	cfg := powermenu.DefaultConfig()
	cfg.Component = "oem.powermenu"
	cfg.SettingKey = "oem_power_menu"
	cfg.Rule = powermenu.RuleConfig{Engine: powermenu.EngineCEL, Expression: "!(locked && secure && power_menu == 0)"}

	signal, err := powermenu.FromConfig(cfg, ctrl, prefs)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if signal.Component() != "oem.powermenu" {
		t.Fatalf("expected component from config, got %q", signal.Component())
	}
	visible, err := signal.Current()
	if err != nil || visible {
		t.Fatalf("expected hidden via oem key, got %v %v", visible, err)
	}

	cfg.PowerControlEnabled = false
	disabled, err := powermenu.FromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("from config disabled: %v", err)
	}
	if disabled.Enabled() {
		t.Fatalf("expected disabled signal")
	}

	cfg.Rule.Expression = "power_menu"
	if _, err := powermenu.FromConfig(cfg, ctrl, prefs); err == nil {
		t.Fatalf("expected rule compile error")
	}
}

func TestDecodeConfigLeavesPayloadUntouched(t *testing.T) {
	rule := map[string]any{"engine": " cel ", "expression": " unlocked "}
	payload := map[string]any{"component": " oem ", "rule": rule}

	cfg, err := powermenu.DecodeConfig(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Rule.Engine != powermenu.EngineCEL || cfg.Component != "oem" {
		t.Fatalf("expected trimmed config, got %+v", cfg)
	}
	if rule["engine"] != " cel " || rule["expression"] != " unlocked " || payload["component"] != " oem " {
		t.Fatalf("caller payload was modified: %v", payload)
	}
}

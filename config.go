package powermenu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-powermenu/internal/hydrate"
	"gopkg.in/yaml.v3"
)

// Config is the build/device configuration for a Signal.
type Config struct {
	// PowerControlEnabled reports whether the power-control affordance is
	// supported at all. It is read once when the Signal is built.
	PowerControlEnabled bool       `json:"power_control_enabled" yaml:"power_control_enabled"`
	Component           string     `json:"component" yaml:"component"`
	SettingKey          string     `json:"setting_key" yaml:"setting_key"`
	Rule                RuleConfig `json:"rule" yaml:"rule"`
}

// RuleConfig selects an optional rule-based visibility policy. An empty
// Expression keeps DefaultPolicy.
type RuleConfig struct {
	Engine     string `json:"engine" yaml:"engine"`
	Expression string `json:"expression" yaml:"expression"`
}

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() Config {
	return Config{
		PowerControlEnabled: true,
		Component:           DefaultComponent,
		SettingKey:          SettingLockscreenPowerMenu,
		Rule:                RuleConfig{Engine: EngineExpr},
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Component) == "" {
		errs = append(errs, errors.New("component is required"))
	}
	if strings.TrimSpace(c.SettingKey) == "" {
		errs = append(errs, errors.New("setting_key is required"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Rule.Engine)) {
	case "", EngineExpr, EngineCEL, EngineJS:
	default:
		errs = append(errs, fmt.Errorf("rule.engine %q is not supported", c.Rule.Engine))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("powermenu: invalid config: %w", errors.Join(errs...))
}

// DecodeConfig overlays payload on DefaultConfig and validates the result.
func DecodeConfig(payload map[string]any) (Config, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	decoder := hydrate.NewDecoder(
		hydrate.WithDisallowUnknownFields[Config](),
		hydrate.WithPreHook[Config](trimStrings),
		hydrate.WithPostHook[Config](func(_ hydrate.Context, cfg *Config) error {
			return cfg.Validate()
		}),
	)
	return decoder.Decode(hydrate.Context{Source: "powermenu"}, DefaultConfig(), payload)
}

// ParseConfig decodes a YAML document into a Config.
func ParseConfig(data []byte) (Config, error) {
	payload := map[string]any{}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return Config{}, fmt.Errorf("powermenu: parse config: %w", err)
	}
	return DecodeConfig(payload)
}

// FromConfig builds a Signal from cfg. Options are applied after the ones
// derived from cfg.
func FromConfig(cfg Config, lock LockStateSource, prefs PreferenceStore, opts ...Option) (*Signal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	derived := []Option{
		WithComponent(cfg.Component),
		WithSettingKey(cfg.SettingKey),
	}
	if strings.TrimSpace(cfg.Rule.Expression) != "" {
		policy, err := NewRulePolicy(cfg.Rule.Engine, cfg.Rule.Expression)
		if err != nil {
			return nil, err
		}
		derived = append(derived, WithPolicy(policy))
	}
	return New(lock, prefs, cfg.PowerControlEnabled, append(derived, opts...)...)
}

// trimStrings returns a copy of payload with string values trimmed. Nested
// maps are copied too, so the caller's payload is never modified.
func trimStrings(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	return trimmed(payload), nil
}

func trimmed(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			out[key] = strings.TrimSpace(v)
		case map[string]any:
			out[key] = trimmed(v)
		default:
			out[key] = value
		}
	}
	return out
}

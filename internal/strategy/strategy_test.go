package strategy

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Name:    "rsi_reversion",
		Symbols: []string{"AAPL"},
		BuyRules: RuleSet{
			Conditions: []Condition{{Indicator: "RSI_14", Operator: OpLT, Threshold: 30}},
		},
		SellRules: RuleSet{
			Conditions: []Condition{{Indicator: "RSI_14", Operator: OpGT, Threshold: 70}},
		},
		SizingMode:    SizingQuantity,
		TradeAmount:   10,
		CheckInterval: time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing name", func(c *Config) { c.Name = "" }},
		{"no rules or predictor", func(c *Config) { c.BuyRules = RuleSet{}; c.SellRules = RuleSet{} }},
		{"bad sizing mode", func(c *Config) { c.SizingMode = "shares" }},
		{"zero trade amount", func(c *Config) { c.TradeAmount = 0 }},
		{"negative stop loss", func(c *Config) { c.StopLoss = -5 }},
		{"confidence out of range", func(c *Config) { c.MinConfidence = 1.5 }},
		{"bad automation mode", func(c *Config) { c.AutomationMode = "YOLO" }},
		{"bad operator", func(c *Config) { c.BuyRules.Conditions[0].Operator = "~" }},
	}

	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestConfig_PredictorOnlyIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.BuyRules = RuleSet{}
	cfg.SellRules = RuleSet{}
	cfg.Predictor = "conservative"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("predictor-only config rejected: %v", err)
	}
	if !cfg.UsesPredictor() {
		t.Error("UsesPredictor should be true")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Confirmation(); got != 1 {
		t.Errorf("Confirmation() = %d, want 1", got)
	}
	if got := cfg.Gate(); got != DefaultMinConfidence {
		t.Errorf("Gate() = %v, want %v", got, DefaultMinConfidence)
	}
	if got := cfg.Window(); got != 60 {
		t.Errorf("Window() = %d, want 60", got)
	}

	cfg.ConfirmationWindow = 3
	cfg.MinConfidence = 0.6
	cfg.WindowBars = 120
	if cfg.Confirmation() != 3 || cfg.Gate() != 0.6 || cfg.Window() != 120 {
		t.Error("explicit values should override defaults")
	}
}

func TestConfig_HasBracket(t *testing.T) {
	cfg := validConfig()
	if cfg.HasBracket() {
		t.Error("no SL/TP set, HasBracket should be false")
	}
	cfg.TakeProfit = 2
	if !cfg.HasBracket() {
		t.Error("take profit set, HasBracket should be true")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	cfg := validConfig()
	cfg.Enabled = true
	if err := reg.Register(cfg); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, ok := reg.Get("rsi_reversion"); !ok {
		t.Error("registered strategy not found")
	}
	if got := len(reg.Enabled()); got != 1 {
		t.Errorf("Enabled() = %d strategies, want 1", got)
	}

	if !reg.SetEnabled("rsi_reversion", false) {
		t.Error("SetEnabled should find the strategy")
	}
	if got := len(reg.Enabled()); got != 0 {
		t.Errorf("Enabled() after disable = %d, want 0", got)
	}

	if reg.SetEnabled("unknown", true) {
		t.Error("SetEnabled on unknown name should return false")
	}
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	bad := validConfig()
	bad.TradeAmount = -1
	if err := reg.Register(bad); err == nil {
		t.Error("expected registration of invalid config to fail")
	}
	if len(reg.GetAll()) != 0 {
		t.Error("invalid config must not be stored")
	}
}

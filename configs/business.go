package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Rank is one row of the rank table. Thresholds are total team sizes.
type Rank struct {
	Name      string  `yaml:"name" json:"name"`
	Threshold int     `yaml:"threshold" json:"threshold"`
	Bonus     float64 `yaml:"bonus" json:"bonus"`
	Reward    string  `yaml:"reward" json:"reward,omitempty"`
}

type BusinessConfig struct {
	MemberPrefix        string  `yaml:"member_prefix"`
	SequenceBase        int64   `yaml:"sequence_base"`
	MatrixWidth         int     `yaml:"matrix_width"`
	MaxTreeDepth        int     `yaml:"max_tree_depth"`
	DirectReferralBonus float64 `yaml:"direct_referral_bonus"`
	ActivationFee       float64 `yaml:"activation_fee"`
	MinimumWithdrawal   float64 `yaml:"minimum_withdrawal"`
	Currency            string  `yaml:"currency"`
	Ranks               []Rank  `yaml:"ranks"`
}

var Business = DefaultBusiness()

func DefaultBusiness() BusinessConfig {
	return BusinessConfig{
		MemberPrefix:        "MX",
		SequenceBase:        1000,
		MatrixWidth:         3,
		MaxTreeDepth:        10,
		DirectReferralBonus: 100,
		ActivationFee:       500,
		MinimumWithdrawal:   200,
		Currency:            "USD",
		Ranks: []Rank{
			{Name: "Associate", Threshold: 0, Bonus: 0},
			{Name: "Bronze", Threshold: 12, Bonus: 500, Reward: "Smart Watch"},
			{Name: "Silver", Threshold: 39, Bonus: 1500, Reward: "Smartphone"},
			{Name: "Gold", Threshold: 120, Bonus: 5000, Reward: "Laptop"},
			{Name: "Platinum", Threshold: 363, Bonus: 15000, Reward: "International Trip"},
			{Name: "Diamond", Threshold: 1092, Bonus: 50000, Reward: "Car Fund"},
		},
	}
}

// LoadBusiness overlays configs/business.yaml (when present) on the defaults.
func LoadBusiness(path string) error {
	v := viper.New()
	v.SetConfigName("business")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	cfg := DefaultBusiness()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read business config: %w", err)
		}
	} else {
		ranks := cfg.Ranks
		cfg.Ranks = nil
		err = v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "yaml"
		})
		if err != nil {
			return fmt.Errorf("unmarshal business config: %w", err)
		}
		if len(cfg.Ranks) == 0 {
			cfg.Ranks = ranks
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	Business = cfg
	return nil
}

func (b BusinessConfig) Validate() error {
	if b.MemberPrefix == "" {
		return fmt.Errorf("member_prefix must not be empty")
	}
	if b.MatrixWidth < 1 {
		return fmt.Errorf("matrix_width must be at least 1")
	}
	if b.MaxTreeDepth < 1 {
		return fmt.Errorf("max_tree_depth must be at least 1")
	}
	if b.DirectReferralBonus < 0 || b.ActivationFee < 0 || b.MinimumWithdrawal < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	if len(b.Ranks) == 0 {
		return fmt.Errorf("rank table is empty")
	}
	if b.Ranks[0].Threshold != 0 {
		return fmt.Errorf("first rank %q must have threshold 0", b.Ranks[0].Name)
	}
	for i := 1; i < len(b.Ranks); i++ {
		if b.Ranks[i].Threshold <= b.Ranks[i-1].Threshold {
			return fmt.Errorf("rank %q threshold %d is not above %q", b.Ranks[i].Name, b.Ranks[i].Threshold, b.Ranks[i-1].Name)
		}
		if b.Ranks[i].Bonus < 0 {
			return fmt.Errorf("rank %q has a negative bonus", b.Ranks[i].Name)
		}
	}
	return nil
}

func (b BusinessConfig) DirectBonus() decimal.Decimal {
	return decimal.NewFromFloat(b.DirectReferralBonus)
}

func (b BusinessConfig) ActivationValue() decimal.Decimal {
	return decimal.NewFromFloat(b.ActivationFee)
}

func (b BusinessConfig) MinWithdrawal() decimal.Decimal {
	return decimal.NewFromFloat(b.MinimumWithdrawal)
}

func (b BusinessConfig) InitialRank() Rank {
	return b.Ranks[0]
}

// RankFor scans from the highest threshold down and returns the best rank
// reachable with teamSize, together with its level (index in the table).
func (b BusinessConfig) RankFor(teamSize int) (Rank, int) {
	for i := len(b.Ranks) - 1; i >= 0; i-- {
		if b.Ranks[i].Threshold <= teamSize {
			return b.Ranks[i], i
		}
	}
	return b.Ranks[0], 0
}

// RootMemberCode is the code held by the seeded root of the matrix.
func (b BusinessConfig) RootMemberCode() string {
	return fmt.Sprintf("%s%d", b.MemberPrefix, b.SequenceBase)
}

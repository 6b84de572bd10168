package edbus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// DefaultPowerDelay is the wait after each supply transition.
const DefaultPowerDelay = 10 * time.Millisecond

// Config maps bus signals to GPIO names, as understood by gpioreg.ByName.
type Config struct {
	CL    string `yaml:"cl"`
	LE    string `yaml:"le"`
	OE    string `yaml:"oe"`
	SPH   string `yaml:"sph"`
	GMODE string `yaml:"gmode"`
	SPV   string `yaml:"spv"`
	CKV   string `yaml:"ckv"`

	// Data lists D0 to D7.
	Data []string `yaml:"data"`

	SMPS string `yaml:"smps"`
	VNEG string `yaml:"vneg"`
	VPOS string `yaml:"vpos"`

	// PowerDelay is the wait after each supply transition, e.g. "10ms".
	PowerDelay time.Duration `yaml:"power_delay"`
}

// DefaultConfig returns the wiring of the Raspberry Pi adapter board: data on
// GPIO 4 to 11, control on 12 to 19, supplies on 20 to 22.
func DefaultConfig() *Config {
	return &Config{
		CL:    "GPIO12",
		LE:    "GPIO13",
		OE:    "GPIO14",
		SPH:   "GPIO15",
		GMODE: "GPIO16",
		SPV:   "GPIO17",
		CKV:   "GPIO18",
		Data: []string{
			"GPIO4", "GPIO5", "GPIO6", "GPIO7",
			"GPIO8", "GPIO9", "GPIO10", "GPIO11",
		},
		SMPS:       "GPIO20",
		VNEG:       "GPIO21",
		VPOS:       "GPIO22",
		PowerDelay: DefaultPowerDelay,
	}
}

// Normalize fills in missing values from DefaultConfig.
func (c *Config) Normalize() {
	def := DefaultConfig()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&c.CL, def.CL)
	fill(&c.LE, def.LE)
	fill(&c.OE, def.OE)
	fill(&c.SPH, def.SPH)
	fill(&c.GMODE, def.GMODE)
	fill(&c.SPV, def.SPV)
	fill(&c.CKV, def.CKV)
	fill(&c.SMPS, def.SMPS)
	fill(&c.VNEG, def.VNEG)
	fill(&c.VPOS, def.VPOS)
	if len(c.Data) == 0 {
		c.Data = def.Data
	}
	if c.PowerDelay <= 0 {
		c.PowerDelay = def.PowerDelay
	}
}

// Validate reports configuration errors left after Normalize.
func (c *Config) Validate() error {
	if len(c.Data) != 8 {
		return fmt.Errorf("edbus: %d data lines configured, want 8", len(c.Data))
	}
	return nil
}

// LoadConfig reads a YAML configuration from path. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("edbus: read config: %w", err)
	}
	c := &Config{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("edbus: parse config %s: %w", path, err)
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Open resolves the configured pins through gpioreg and returns a Bus.
func Open(c *Config) (*Bus, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var firstErr error
	pin := func(name string) gpio.PinOut {
		p := gpioreg.ByName(name)
		if p == nil && firstErr == nil {
			firstErr = fmt.Errorf("edbus: gpio %s not found", name)
		}
		return p
	}
	pins := Pins{
		CL:    pin(c.CL),
		LE:    pin(c.LE),
		OE:    pin(c.OE),
		SPH:   pin(c.SPH),
		GMODE: pin(c.GMODE),
		SPV:   pin(c.SPV),
		CKV:   pin(c.CKV),
		SMPS:  pin(c.SMPS),
		VNEG:  pin(c.VNEG),
		VPOS:  pin(c.VPOS),
	}
	for i, name := range c.Data {
		pins.D[i] = pin(name)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return New(pins, c.PowerDelay)
}

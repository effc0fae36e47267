/*
Package config provides Config, an assignment of values to the variables of
a domain.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/unsat/igen/domain"
)

// Unset marks a variable without an assigned value.
const Unset = -1

/*
Config is a fixed-length assignment of value indices to the variables of a
domain. Slots holding Unset leave the variable free, which makes the config
a template for further sampling.
*/
type Config struct {
	values []int
}

// New returns a config of n variables, all of them unset.
func New(n int) *Config {
	values := make([]int, n)
	for i := range values {
		values[i] = Unset
	}
	return &Config{values}
}

// FromValues returns a config holding a copy of the given value indices.
func FromValues(values []int) *Config {
	return &Config{append([]int(nil), values...)}
}

/*
Parse takes a domain and a string of space separated name=label settings and
returns a config with those settings, leaving the rest of variables unset.
It returns an error for unknown variables or labels.
*/
func Parse(d *domain.Domain, s string) (*Config, error) {
	c := New(d.NVars())
	for _, setting := range strings.Fields(s) {
		parts := strings.SplitN(setting, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("parsing config setting %q: expected name=label", setting)
		}
		v := d.Lookup(parts[0])
		if v == nil {
			return nil, fmt.Errorf("parsing config setting %q: unknown variable %s", setting, parts[0])
		}
		val, ok := v.ValueIndex(parts[1])
		if !ok {
			return nil, fmt.Errorf("parsing config setting %q: unknown value %s for variable %s", setting, parts[1], v.Name())
		}
		c.values[v.ID()] = val
	}
	return c, nil
}

// Len returns the number of variables in the config.
func (c *Config) Len() int {
	return len(c.values)
}

// Get returns the value index of the variable, or Unset.
func (c *Config) Get(id int) int {
	return c.values[id]
}

// Set assigns the value index val to the variable.
func (c *Config) Set(id, val int) {
	c.values[id] = val
}

// Unset clears the value of the variable.
func (c *Config) Unset(id int) {
	c.values[id] = Unset
}

// Values returns the value indices of the config. The slice must not be modified.
func (c *Config) Values() []int {
	return c.values
}

// Clone returns an independent copy of the config.
func (c *Config) Clone() *Config {
	return FromValues(c.values)
}

// IsComplete returns whether every variable has a value.
func (c *Config) IsComplete() bool {
	for _, v := range c.values {
		if v == Unset {
			return false
		}
	}
	return true
}

// Equal returns whether both configs hold the same assignment.
func (c *Config) Equal(o *Config) bool {
	if len(c.values) != len(o.values) {
		return false
	}
	for i, v := range c.values {
		if o.values[i] != v {
			return false
		}
	}
	return true
}

/*
Validate returns an error if the config does not fit the domain: a length
other than its number of variables or a value outside a variable's range.
*/
func (c *Config) Validate(d *domain.Domain) error {
	if len(c.values) != d.NVars() {
		return fmt.Errorf("config has %d variables, domain has %d", len(c.values), d.NVars())
	}
	for i, v := range c.values {
		if v != Unset && (v < 0 || v >= d.NValues(i)) {
			return fmt.Errorf("value %d out of range for variable %s", v, d.Var(i).Name())
		}
	}
	return nil
}

// Format renders the set variables of the config as name=label settings.
func (c *Config) Format(d *domain.Domain) string {
	var parts []string
	for i, v := range c.values {
		if v == Unset {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", d.Var(i).Name(), d.Var(i).Label(v)))
	}
	return strings.Join(parts, " ")
}

func (c *Config) String() string {
	return fmt.Sprintf("%v", c.values)
}

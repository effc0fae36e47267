/*
Package csv reads and writes configurations in CSV format.

The header row names the domain variables, plus an optional label column
named hit. Each following row holds a configuration: a value label per
variable or ? for an unset one, and for labeled sets, whether the
configuration hit the target (1, true or hit) or missed it (0, false or miss).
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/dataset"
	"github.com/unsat/igen/domain"
)

// LabelColumn is the name of the header column holding the hit/miss label.
const LabelColumn = "hit"

const unsetValue = "?"

/*
Writer is an interface for a destination to which configurations
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given configs
	// and will return the actually written number of
	// configs and an error (if not all of them could
	// be written)
	Write([]*config.Config) (int, error)
	// Count returns the total number of configs written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count int
	dom   *domain.Domain
	w     *csv.Writer
}

type header struct {
	vars     []*domain.VariableDomain
	labelCol int
}

/*
ReadSet takes an io.Reader for a CSV stream and a domain and returns the
dataset.Set of labeled configurations parsed from the reader or an error.
The header must include the label column.
*/
func ReadSet(reader io.Reader, d *domain.Domain) (*dataset.Set, error) {
	s := &dataset.Set{}
	err := ReadBySample(reader, d, true, func(_ int, c *config.Config, hit bool) (bool, error) {
		s.Add(c, hit)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

/*
ReadConfigs takes an io.Reader for a CSV stream and a domain and returns the
configurations parsed from it, ignoring the label column if present.
*/
func ReadConfigs(reader io.Reader, d *domain.Domain) ([]*config.Config, error) {
	var configs []*config.Config
	err := ReadBySample(reader, d, false, func(_ int, c *config.Config, _ bool) (bool, error) {
		configs = append(configs, c)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}

/*
ReadBySample takes an io.Reader for a CSV stream, a domain, whether a label
column is required and a lambda function on an integer, a config and its
label that returns a boolean value. It parses the configs from the reader
and for each it calls the lambda function with its index, the config and
its label (false when there is no label column). If the lambda function
returns true, it will continue processing the next config, otherwise it
will stop. An error is returned if something goes wrong when reading or
parsing a config.
*/
func ReadBySample(reader io.Reader, d *domain.Domain, labeled bool, lambda func(int, *config.Config, bool) (bool, error)) error {
	r := csv.NewReader(reader)
	row, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	h, err := parseHeader(row, d)
	if err != nil {
		return err
	}
	if labeled && h.labelCol < 0 {
		return fmt.Errorf("parsing header: missing %s column", LabelColumn)
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		c, hit, err := h.parseRow(row, d.NVars())
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", l, err)
		}
		ok, err := lambda(l-2, c, hit)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadSetFromFilePath takes a filepath string and a domain, opens the file to
which the filepath points to (os.Stdin if it is empty) and uses ReadSet to
return the dataset.Set read from it or an error.
*/
func ReadSetFromFilePath(filepath string, d *domain.Domain) (*dataset.Set, error) {
	f := os.Stdin
	if filepath != "" {
		var err error
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading configs: %w", err)
		}
		defer f.Close()
	}
	s, err := ReadSet(f, d)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return s, err
}

/*
NewWriter takes an io.Writer and a domain and returns a Writer that will
write configs on the io.Writer, after a header with the variable names.
*/
func NewWriter(writer io.Writer, d *domain.Domain) (Writer, error) {
	w := csv.NewWriter(writer)
	record := make([]string, d.NVars())
	for i, v := range d.Vars() {
		record[i] = v.Name()
	}
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &csvWriter{dom: d, w: w}, nil
}

/*
WriteConfigs takes a writer, a domain and a slice of configs and dumps the
configs to the writer in CSV format. It returns the number of configs
written and an error if something went wrong when writing to the writer.
*/
func WriteConfigs(writer io.Writer, d *domain.Domain, configs []*config.Config) (int, error) {
	cw, err := NewWriter(writer, d)
	if err != nil {
		return 0, err
	}
	n, err := cw.Write(configs)
	if err != nil {
		return n, err
	}
	if err := cw.Flush(); err != nil {
		return n, err
	}
	return cw.Count(), nil
}

func parseHeader(row []string, d *domain.Domain) (*header, error) {
	h := &header{vars: make([]*domain.VariableDomain, len(row)), labelCol: -1}
	seen := make(map[string]bool)
	for i, name := range row {
		name = strings.TrimSpace(name)
		if name == LabelColumn {
			h.labelCol = i
			continue
		}
		v := d.Lookup(name)
		if v == nil {
			return nil, fmt.Errorf("parsing header: reference to unknown variable %s", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("parsing header: duplicated variable %s", name)
		}
		seen[name] = true
		h.vars[i] = v
	}
	return h, nil
}

func (h *header) parseRow(row []string, nvars int) (*config.Config, bool, error) {
	if len(row) != len(h.vars) {
		return nil, false, fmt.Errorf("expected %d fields, got %d", len(h.vars), len(row))
	}
	c := config.New(nvars)
	var hit bool
	for i, field := range row {
		field = strings.TrimSpace(field)
		if i == h.labelCol {
			var err error
			hit, err = parseLabel(field)
			if err != nil {
				return nil, false, err
			}
			continue
		}
		if field == unsetValue {
			continue
		}
		v := h.vars[i]
		val, ok := v.ValueIndex(field)
		if !ok {
			return nil, false, fmt.Errorf("invalid value %s for variable %s", field, v.Name())
		}
		c.Set(v.ID(), val)
	}
	return c, hit, nil
}

func parseLabel(field string) (bool, error) {
	switch strings.ToLower(field) {
	case "1", "true", "hit":
		return true, nil
	case "0", "false", "miss":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s label %q", LabelColumn, field)
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(configs []*config.Config) (int, error) {
	for n, c := range configs {
		err := cw.WriteConfig(c)
		if err != nil {
			return n, err
		}
	}
	return len(configs), nil
}

func (cw *csvWriter) WriteConfig(c *config.Config) error {
	record := make([]string, cw.dom.NVars())
	for i, v := range cw.dom.Vars() {
		val := c.Get(i)
		if val == config.Unset {
			record[i] = unsetValue
		} else {
			record[i] = v.Label(val)
		}
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row for config %d: %w", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

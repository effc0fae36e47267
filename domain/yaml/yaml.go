/*
Package yaml provides methods to parse domain.Domain specifications from
YAML documents.
*/
package yaml

import (
	"fmt"
	"os"

	"github.com/unsat/igen/domain"
	"github.com/unsat/igen/expr"
	yaml "gopkg.in/yaml.v2"
)

/*
ReadDomain takes an expr.Context and a slice of bytes with a domain
specification in YAML and returns the domain parsed from it or an error.
The YAML is expected to be an object containing a variables property. The
value for this should be a mapping from each variable name to the list of
labels of its values. Variables keep the order in which they are declared.
*/
func ReadDomain(ctx *expr.Context, md []byte) (*domain.Domain, error) {
	spec := struct {
		Variables yaml.MapSlice
	}{}
	err := yaml.Unmarshal(md, &spec)
	if err != nil {
		return nil, &domain.MalformedDomainError{Err: fmt.Errorf("parsing yml domain: %w", err)}
	}
	if spec.Variables == nil {
		return nil, &domain.MalformedDomainError{Err: fmt.Errorf("yml domain has no variables")}
	}
	d := domain.New(ctx)
	for _, item := range spec.Variables {
		name := fmt.Sprintf("%v", item.Key)
		var labels []string
		switch values := item.Value.(type) {
		case []interface{}:
			for _, v := range values {
				labels = append(labels, fmt.Sprintf("%v", v))
			}
		case nil:
		default:
			return nil, &domain.MalformedDomainError{Err: fmt.Errorf("invalid declaration of type %T for variable %s", item.Value, name)}
		}
		if len(labels) == 0 {
			continue
		}
		if _, err = d.Add(name, labels); err != nil {
			return nil, &domain.MalformedDomainError{Err: err}
		}
	}
	return d, nil
}

/*
ReadDomainFromFile takes an expr.Context and a filepath string, reads its
contents and uses ReadDomain to parse it and return the domain or an error.
*/
func ReadDomainFromFile(ctx *expr.Context, filepath string) (*domain.Domain, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, &domain.MalformedDomainError{Err: fmt.Errorf("reading domain yml file %s: %w", filepath, err)}
	}
	d, err := ReadDomain(ctx, md)
	if err != nil {
		err = fmt.Errorf("parsing domain yml file %s: %w", filepath, err)
	}
	return d, err
}

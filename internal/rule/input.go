// Package rule turns the values of a filled-in rule form into a Datalog
// policy rule.
package rule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Join struct {
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
}

type Negation struct {
	Value  string `yaml:"value"`
	Column string `yaml:"column"`
}

type Alias struct {
	Table string `yaml:"table"`
	Name  string `yaml:"name"`
}

// Input is everything the rule form submits. Mappings[i] is the data source
// column feeding Columns[i].
type Input struct {
	Policy      string     `yaml:"policy"`
	Name        string     `yaml:"name"`
	Comment     string     `yaml:"comment"`
	PolicyTable string     `yaml:"table"`
	Columns     []string   `yaml:"columns"`
	Mappings    []string   `yaml:"mappings"`
	Joins       []Join     `yaml:"joins"`
	Negations   []Negation `yaml:"negations"`
	Aliases     []Alias    `yaml:"aliases"`
}

// LoadFile reads a YAML rule form description.
func LoadFile(filePath string) (*Input, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read form file '%s': %w", filePath, err)
	}

	var in Input
	if err := yaml.Unmarshal(bytes, &in); err != nil {
		return nil, fmt.Errorf("failed to parse form file '%s': %w", filePath, err)
	}
	return &in, nil
}

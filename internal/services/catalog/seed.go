package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quickloan/internal/models"
)

// LoadSeedFile reads a YAML catalog. Entries default to active unless the
// file says otherwise.
func LoadSeedFile(path string) ([]models.LoanType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]models.LoanType, error) {
	var doc struct {
		LoanTypes []yaml.Node `yaml:"loan_types"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	items := make([]models.LoanType, 0, len(doc.LoanTypes))
	for i := range doc.LoanTypes {
		lt := models.LoanType{IsActive: true}
		if err := doc.LoanTypes[i].Decode(&lt); err != nil {
			return nil, fmt.Errorf("failed to decode loan type %d: %w", i, err)
		}
		items = append(items, lt)
	}
	return items, nil
}

package commands

import (
	"fmt"
	"io"

	"apartmentqueue/internal/queue"
	"apartmentqueue/internal/utils"
	"apartmentqueue/internal/valuation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type costIndexFile struct {
	CostIndices []struct {
		ValidFrom string `yaml:"validFrom"`
		Value     string `yaml:"value"`
	} `yaml:"costIndices"`
}

// readCostIndices parses a YAML cost index series. Values are read as strings
// so no precision is lost to floats.
func readCostIndices(r io.Reader) ([]valuation.Point, error) {
	var file costIndexFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse cost index file: %w", err)
	}

	points := make([]valuation.Point, 0, len(file.CostIndices))
	for i, entry := range file.CostIndices {
		validFrom, err := utils.ParseDate(entry.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		value, err := decimal.NewFromString(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d: invalid value %q: %w", i+1, entry.Value, err)
		}
		points = append(points, valuation.Point{ValidFrom: validFrom, Value: value})
	}
	return points, nil
}

type scenarioFile struct {
	Applications []struct {
		Name               string   `yaml:"name"`
		RightOfOccupancyID int      `yaml:"rightOfOccupancyId"`
		Approved           bool     `yaml:"approved"`
		Apartments         []string `yaml:"apartments"`
	} `yaml:"applications"`
}

// scenario is a resolver input built from names, with the names kept for
// printing results.
type scenario struct {
	priorities []queue.Priority
	names      map[uuid.UUID]string
}

func nameID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+"/"+name))
}

func readScenario(r io.Reader) (scenario, error) {
	var file scenarioFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	result := scenario{names: make(map[uuid.UUID]string)}
	for _, application := range file.Applications {
		if application.Name == "" {
			return scenario{}, fmt.Errorf("application without a name")
		}
		applicationID := nameID("application", application.Name)
		if _, exists := result.names[applicationID]; exists {
			return scenario{}, fmt.Errorf("application %q listed twice", application.Name)
		}
		result.names[applicationID] = application.Name

		for i, apartment := range application.Apartments {
			apartmentID := nameID("apartment", apartment)
			result.names[apartmentID] = apartment
			result.priorities = append(result.priorities, queue.Priority{
				ID:                 nameID("priority", application.Name+"/"+apartment),
				ApartmentID:        apartmentID,
				ApplicationID:      applicationID,
				PriorityNumber:     i + 1,
				RightOfOccupancyID: application.RightOfOccupancyID,
				Approved:           application.Approved,
				Active:             true,
			})
		}
	}
	return result, nil
}

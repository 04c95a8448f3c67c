package problem_repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/compprog-lecture-tools/problem-list/problem_repository/models"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidMetadata is wrapped by every error caused by a malformed problem.json
var ErrInvalidMetadata = errors.New("invalid problem metadata")

var metadataValidate = validator.New()

// metadataFile mirrors the on-disk problem.json layout
type metadataFile struct {
	Difficulty  *int          `json:"difficulty" validate:"required,min=1,max=5"`
	Tags        []string      `json:"tags" validate:"required,dive,required"`
	Description string        `json:"description"`
	BasedOn     *basedOnField `json:"based_on"`
}

type basedOnField struct {
	Type string   `json:"type" validate:"required,oneof=codeforces old-problem other"`
	Data []string `json:"data" validate:"required"`
}

// readMetadata returns nil without error when the file does not exist
func readMetadata(path string) (*models.Metadata, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseMetadata(path, data)
}

func parseMetadata(path string, data []byte) (*models.Metadata, error) {
	var raw metadataFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, path, err)
	}
	if err := metadataValidate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, path, err)
	}

	metadata := &models.Metadata{
		Difficulty:  *raw.Difficulty,
		Tags:        raw.Tags,
		Description: raw.Description,
	}
	if raw.BasedOn != nil {
		provenance, err := raw.BasedOn.provenance()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMetadata, path, err)
		}
		metadata.BasedOn = provenance
	}
	return metadata, nil
}

func (b *basedOnField) provenance() (models.Provenance, error) {
	want := map[string]int{
		models.ProvenanceCodeforces: 2,
		models.ProvenanceDerived:    3,
		models.ProvenanceOther:      1,
	}[b.Type]
	if len(b.Data) != want {
		return nil, fmt.Errorf("based_on of type %q needs %d data entries, got %d", b.Type, want, len(b.Data))
	}

	switch b.Type {
	case models.ProvenanceCodeforces:
		return models.CodeforcesProvenance{Contest: b.Data[0], ProblemID: b.Data[1]}, nil
	case models.ProvenanceDerived:
		return models.DerivedProvenance{Course: b.Data[0], Unit: b.Data[1], Problem: b.Data[2]}, nil
	default:
		return models.OtherProvenance{Note: b.Data[0]}, nil
	}
}

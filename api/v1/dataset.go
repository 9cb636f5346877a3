package v1

import (
	"fmt"
)

const datasetURIRequired = "Error while creating experiment with dataset: " +
	"\"uri\" key is required and it's value must be a valid S3 URI"

// Dataset: external data source mounted into an experiment
type Dataset struct {
	URI  string `json:"uri" yaml:"uri"`
	Tag  string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Auth string `json:"auth,omitempty" yaml:"auth,omitempty"`
}

func (ds Dataset) Validate() error {
	if len(ds.URI) == 0 {
		return NewResourceCreatingDataError(datasetURIRequired)
	}
	return nil
}

// ConvertDatasets: turn dataset mappings into validated descriptors.
// Accepts nil, a single mapping, a slice of mappings or already converted descriptors.
// Conversion is all-or-nothing: on error no descriptors are returned.
func ConvertDatasets(datasets interface{}) ([]Dataset, error) {
	var mappings []map[string]interface{}
	switch v := datasets.(type) {
	case nil:
		return nil, nil
	case Dataset:
		return validateDatasets([]Dataset{v})
	case []Dataset:
		if len(v) == 0 {
			return nil, nil
		}
		return validateDatasets(append([]Dataset{}, v...))
	case map[string]string:
		mappings = []map[string]interface{}{stringMap(v)}
	case map[string]interface{}:
		mappings = []map[string]interface{}{v}
	case []map[string]string:
		for _, m := range v {
			mappings = append(mappings, stringMap(m))
		}
	case []map[string]interface{}:
		mappings = v
	case []interface{}:
		for i, item := range v {
			switch m := item.(type) {
			case map[string]interface{}:
				mappings = append(mappings, m)
			case map[string]string:
				mappings = append(mappings, stringMap(m))
			default:
				return nil, NewResourceCreatingDataError("datasets[%d]: expected a mapping, got %T", i, item)
			}
		}
	default:
		return nil, NewResourceCreatingDataError("unsupported datasets value of type %T", datasets)
	}
	if len(mappings) == 0 {
		return nil, nil
	}

	// check every element before converting any of them
	for _, m := range mappings {
		if uri, _ := m["uri"].(string); len(uri) == 0 {
			return nil, NewResourceCreatingDataError(datasetURIRequired)
		}
	}
	result := make([]Dataset, 0, len(mappings))
	for i, m := range mappings {
		ds, err := datasetFromMap(m)
		if err != nil {
			return nil, NewResourceCreatingDataError("datasets[%d]: %v", i, err)
		}
		result = append(result, ds)
	}
	return result, nil
}

func validateDatasets(datasets []Dataset) ([]Dataset, error) {
	for _, ds := range datasets {
		if err := ds.Validate(); err != nil {
			return nil, err
		}
	}
	return datasets, nil
}

func datasetFromMap(m map[string]interface{}) (Dataset, error) {
	ds := Dataset{}
	for key, value := range m {
		s, ok := value.(string)
		if !ok && value != nil {
			return ds, fmt.Errorf("value of %q must be a string, got %T", key, value)
		}
		switch key {
		case "uri":
			ds.URI = s
		case "tag":
			ds.Tag = s
		case "auth":
			ds.Auth = s
		default:
			return ds, fmt.Errorf("unexpected key %q", key)
		}
	}
	return ds, nil
}

func stringMap(m map[string]string) map[string]interface{} {
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

package domain

// Content is the per-sample-type payload of a part, modelled as a tagged
// union keyed by the part's SampleType. Each variant has its own field set;
// ValidateContent rejects payloads that mix variants or omit required fields.
type Content struct {
	// shared
	Description string `json:"description,omitempty"`

	// primer
	Sequence           string  `json:"sequence,omitempty"`
	Orientation        string  `json:"orientation,omitempty"`
	MeltingTemperature float64 `json:"melting_temperature,omitempty"`
	Concentration      string  `json:"concentration,omitempty"`
	Vendor             string  `json:"vendor,omitempty"`

	// bacterium
	PlasmidName string `json:"plasmid_name,omitempty"`
	HostStrain  string `json:"host_strain,omitempty"`

	// yeast
	Parents     []string `json:"parents,omitempty"`
	Genotype    []string `json:"genotype,omitempty"`
	PlasmidType string   `json:"plasmid_type,omitempty"`

	// bacterium and yeast
	Markers []string `json:"markers,omitempty"`

	// free-form key-value data, any sample type
	CustomData map[string]any `json:"custom_data,omitempty"`
}

// Clone returns an independent deep copy of the content payload.
func (c Content) Clone() Content {
	cp := c
	cp.Parents = append([]string(nil), c.Parents...)
	cp.Genotype = append([]string(nil), c.Genotype...)
	cp.Markers = append([]string(nil), c.Markers...)
	if c.CustomData != nil {
		cp.CustomData = make(map[string]any, len(c.CustomData))
		for k, v := range c.CustomData {
			cp.CustomData[k] = v
		}
	}
	return cp
}

// ValidateContent checks a content payload against the variant selected by
// sampleType. Unknown sample types and cross-variant payloads fail with
// ValidationError.
func ValidateContent(sampleType SampleType, c Content) error {
	switch sampleType {
	case SamplePrimer:
		if c.Sequence == "" {
			return ValidationError{Field: "content.sequence", Reason: "required for primers"}
		}
		if c.PlasmidName != "" || c.HostStrain != "" {
			return ValidationError{Field: "content.plasmid_name", Reason: "bacterium fields not allowed on a primer"}
		}
		if len(c.Parents) > 0 || len(c.Genotype) > 0 || c.PlasmidType != "" {
			return ValidationError{Field: "content.genotype", Reason: "yeast fields not allowed on a primer"}
		}
		if len(c.Markers) > 0 {
			return ValidationError{Field: "content.markers", Reason: "markers not allowed on a primer"}
		}
	case SampleBacterium:
		if c.PlasmidName == "" {
			return ValidationError{Field: "content.plasmid_name", Reason: "required for bacteria"}
		}
		if err := rejectPrimerFields(c); err != nil {
			return err
		}
		if len(c.Parents) > 0 || len(c.Genotype) > 0 || c.PlasmidType != "" {
			return ValidationError{Field: "content.genotype", Reason: "yeast fields not allowed on a bacterium"}
		}
	case SampleYeast:
		if len(c.Genotype) == 0 {
			return ValidationError{Field: "content.genotype", Reason: "required for yeast strains"}
		}
		if err := rejectPrimerFields(c); err != nil {
			return err
		}
		if c.PlasmidName != "" || c.HostStrain != "" {
			return ValidationError{Field: "content.plasmid_name", Reason: "bacterium fields not allowed on a yeast strain"}
		}
	default:
		return ValidationError{Field: "sample_type", Reason: "unrecognized sample type " + string(sampleType)}
	}
	return nil
}

func rejectPrimerFields(c Content) error {
	if c.Sequence != "" || c.Orientation != "" || c.MeltingTemperature != 0 || c.Concentration != "" || c.Vendor != "" {
		return ValidationError{Field: "content.sequence", Reason: "primer fields not allowed for this sample type"}
	}
	return nil
}

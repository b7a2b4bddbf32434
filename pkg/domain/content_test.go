package domain

import (
	"errors"
	"testing"
)

func TestValidateContentRequiredFields(t *testing.T) {
	if err := ValidateContent(SamplePrimer, Content{Sequence: "ATTCGGGTA"}); err != nil {
		t.Fatalf("primer with sequence should validate: %v", err)
	}
	if err := ValidateContent(SamplePrimer, Content{}); err == nil {
		t.Fatalf("expected error for primer without sequence")
	}
	if err := ValidateContent(SampleBacterium, Content{PlasmidName: "pUC19"}); err != nil {
		t.Fatalf("bacterium with plasmid should validate: %v", err)
	}
	if err := ValidateContent(SampleBacterium, Content{HostStrain: "DH5a"}); err == nil {
		t.Fatalf("expected error for bacterium without plasmid name")
	}
	if err := ValidateContent(SampleYeast, Content{Genotype: []string{"MATa his3"}}); err != nil {
		t.Fatalf("yeast with genotype should validate: %v", err)
	}
	if err := ValidateContent(SampleYeast, Content{}); err == nil {
		t.Fatalf("expected error for yeast without genotype")
	}
}

func TestValidateContentRejectsCrossVariantFields(t *testing.T) {
	err := ValidateContent(SamplePrimer, Content{Sequence: "ATTC", PlasmidName: "pUC19"})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := ValidateContent(SampleBacterium, Content{PlasmidName: "pUC19", Sequence: "ATTC"}); err == nil {
		t.Fatalf("expected error for bacterium carrying primer fields")
	}
	if err := ValidateContent(SampleYeast, Content{Genotype: []string{"MATa"}, HostStrain: "DH5a"}); err == nil {
		t.Fatalf("expected error for yeast carrying bacterium fields")
	}
}

func TestValidateContentUnknownSampleType(t *testing.T) {
	err := ValidateContent(SampleType("virus"), Content{})
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "sample_type" {
		t.Fatalf("expected sample_type field, got %s", ve.Field)
	}
}

func TestContentCloneIsIndependent(t *testing.T) {
	orig := Content{
		Genotype:   []string{"MATa", "his3"},
		Markers:    []string{"URA3"},
		CustomData: map[string]any{"ploidy": "haploid"},
	}
	cp := orig.Clone()
	cp.Genotype[0] = "MATalpha"
	cp.CustomData["ploidy"] = "diploid"
	if orig.Genotype[0] != "MATa" {
		t.Fatalf("clone mutated original genotype")
	}
	if orig.CustomData["ploidy"] != "haploid" {
		t.Fatalf("clone mutated original custom data")
	}
}

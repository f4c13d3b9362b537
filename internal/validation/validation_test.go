package validation

import (
	"errors"
	"testing"

	"github.com/hitoshi/storefront/internal/model"
)

func TestCollector_ZeroValueHasNoErrors(t *testing.T) {
	var c Collector

	if c.HasErrors() {
		t.Error("HasErrors() = true for zero value")
	}
	if err := c.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestCollector_AccumulatesViolationsPerField(t *testing.T) {
	var c Collector
	c.Add("title", "The product title is required.")
	c.Add("price", "The price field is required.")
	c.Add("price", "The price field must be at least 0.")

	if !c.HasErrors() {
		t.Fatal("HasErrors() = false after Add")
	}

	err := c.Err()
	var valErr *model.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Err() = %T, want *model.ValidationError", err)
	}

	if len(valErr.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(valErr.Fields))
	}
	if len(valErr.Fields["price"]) != 2 {
		t.Errorf("len(Fields[price]) = %d, want 2", len(valErr.Fields["price"]))
	}
	if valErr.Fields["title"][0] != "The product title is required." {
		t.Errorf("Fields[title][0] = %q", valErr.Fields["title"][0])
	}
}

func TestCollector_PreservesInsertionOrderWithinField(t *testing.T) {
	var c Collector
	c.Add("rating.rate", "first")
	c.Add("rating.rate", "second")

	var valErr *model.ValidationError
	if !errors.As(c.Err(), &valErr) {
		t.Fatal("Err() did not return a *model.ValidationError")
	}
	got := valErr.Fields["rating.rate"]
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("Fields[rating.rate] = %v, want [first second]", got)
	}
}

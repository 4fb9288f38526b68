package drug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddDrugRequestValidate(t *testing.T) {
	assert.NoError(t, (&AddDrugRequest{Name: "Paracetamol", Batch: "B-001"}).Validate())

	for name, req := range map[string]AddDrugRequest{
		"empty name":      {Batch: "B-001"},
		"blank name":      {Name: "  ", Batch: "B-001"},
		"empty batch":     {Name: "Paracetamol"},
		"whitespace only": {Name: "Paracetamol", Batch: "\t"},
	} {
		assert.Error(t, req.Validate(), name)
	}
}

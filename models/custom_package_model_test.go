package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalPrice(t *testing.T) {
	pkg := CustomPackage{
		Items: []PackageItem{
			{Name: "Personal Training", Quantity: 4, Price: 35.00},
			{Name: "Sauna Access", Quantity: 1, Price: 15.00},
			{Name: "Nutrition Plan", Quantity: 1, Price: 20.00},
		},
	}

	assert.InDelta(t, 175.00, pkg.ComputeTotalPrice(), 0.001)
}

func TestComputeTotalPriceEmptyPackage(t *testing.T) {
	pkg := CustomPackage{}

	assert.Equal(t, 0.0, pkg.ComputeTotalPrice())
}

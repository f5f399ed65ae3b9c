package factor_test

import (
	"fmt"

	"github.com/Matt3164/sill/core"
	"github.com/Matt3164/sill/factor"
)

// ExampleCombine multiplies two single-variable potentials and reads a
// marginal off the product.
func ExampleCombine() {
	u := core.NewUniverse()
	rain, _ := u.NewVariable("rain", 2)
	wet, _ := u.NewVariable("wet", 2)

	pRain, _ := factor.FromValues([]*core.Variable{rain}, []float64{0.8, 0.2})
	pWetGivenRain, _ := factor.FromValues([]*core.Variable{wet, rain},
		[]float64{0.9, 0.1, 0.05, 0.95})

	joint, _ := factor.Combine(pRain, pWetGivenRain, factor.OpProduct)
	pWet, _ := joint.Marginal(core.NewDomain(wet))

	fmt.Printf("P(wet=1) = %.2f\n", pWet.Values()[1])
	// Output:
	// P(wet=1) = 0.27
}

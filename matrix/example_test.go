// SPDX-License-Identifier: MIT
package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/lvlearn/matrix"
)

// ExampleSolveSPD solves a small symmetric positive definite system.
func ExampleSolveSPD() {
	a, _ := matrix.NewDenseRows([][]float64{{4, 2}, {2, 3}})
	b, _ := matrix.NewDenseRows([][]float64{{6}, {5}})

	x, err := matrix.SolveSPD(a, b)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("x = [%.3f %.3f]\n", x.Raw()[0], x.Raw()[1])
	// Output:
	// x = [1.000 1.000]
}

// ExampleMulInto reuses one buffer for products of different shapes.
func ExampleMulInto() {
	buf, _ := matrix.NewDense(1, 1)
	a, _ := matrix.NewDenseRows([][]float64{{1, 2}, {3, 4}})

	_ = matrix.MulInto(buf, a, a)
	fmt.Print(buf)
	// Output:
	// [7, 10]
	// [15, 22]
}

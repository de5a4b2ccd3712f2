// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shamir

// irreducible polynomial (x^8 + x^4 + x^3 + x + 1)
// we deal with uint8 so we only need 0x1B
const irreduciblePolynomial = 0x1B

// element is a member of GF(2^8). Addition and subtraction are both xor.
type element byte

func (e element) add(a element) element {
	return e ^ a
}

// mul multiplies without tables or branches on secret values.
func (e element) mul(a element) element {
	x := byte(e)
	y := byte(a)

	var product uint8

	// Negating a single bit yields an all-zeros or all-ones mask, which selects
	// operands without branching.
	for i := 7; i >= 0; i-- {
		// reduce by the polynomial if the MSB of the running product is set
		mod := (-(product >> 7)) & irreduciblePolynomial

		// bit i of x times y
		xiTimesY := -((x >> i) & 1) & y

		product = xiTimesY ^ mod ^ (product << 1)
	}
	return element(product)
}

// inverse returns e^-1, computed as e^254. Zero maps to zero, so callers must
// reject zero x coordinates themselves.
func (e element) inverse() element {
	b := e.mul(e) // e^2
	c := e.mul(b) // e^3

	b = c.mul(c)    // e^6
	b = b.mul(b)    // e^12
	c = b.mul(c)    // e^15
	b = b.mul(b)    // e^30
	b = b.mul(b)    // e^60
	b = b.mul(c)    // e^63
	b = b.mul(b)    // e^126
	b = e.mul(b)    // e^127
	return b.mul(b) // e^254
}

// evaluate returns f(x) for f(x) = c[0] + c[1]*x + ... + c[n-1]*x^(n-1).
func evaluate(coefficients []element, x element) element {
	var sum element
	for i := len(coefficients) - 1; i > 0; i-- {
		sum = sum.add(coefficients[i]).mul(x)
	}
	return sum.add(coefficients[0])
}

// lagrangeAtZero returns the Lagrange basis polynomials of `xs` evaluated at 0:
// l[i] = ∏j≠i x[j] / (x[j] - x[i])
// The x coordinates must be distinct and non-zero.
func lagrangeAtZero(xs []element) []element {
	out := make([]element, len(xs))
	for i := range xs {
		out[i] = 1
		for j := range xs {
			if i == j {
				continue
			}
			out[i] = out[i].mul(xs[j]).mul(xs[j].add(xs[i]).inverse())
		}
	}
	return out
}
